package meta

import version "github.com/hashicorp/go-version"

const AppName = "bridgen"

var (
	Version = version.Must(version.NewSemver("0.1.0"))
)
