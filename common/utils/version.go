package utils

// Set at build time through -ldflags "-X .../common/utils.version=..."
var version = "dev"

func GetVersion() string {
	return version
}
