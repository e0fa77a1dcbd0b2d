package tutil

import (
	"os"
	"strings"
)

// IntegrationTestEnvVar switches on tests that need a real database server.
const IntegrationTestEnvVar = "DENSITY_TEST"

func IsIntegrationTest() bool {
	return strings.EqualFold(os.Getenv(IntegrationTestEnvVar), "integration")
}
