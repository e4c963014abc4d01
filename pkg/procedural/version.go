package procedural

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// APIVersion is the version of the scene API this host provides
const APIVersion = "1.0.0"

// CheckHostVersion checks that the host API version satisfies a manifest's
// hostVersion constraint. An empty constraint accepts any host.
func CheckHostVersion(constraint string) error {
	if constraint == "" {
		return nil
	}

	v, err := semver.NewVersion(APIVersion)
	if err != nil {
		return fmt.Errorf("invalid host version %s: %w", APIVersion, err)
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %s: %w", constraint, err)
	}

	if !c.Check(v) {
		return fmt.Errorf("host version %s does not satisfy constraint %s", APIVersion, constraint)
	}

	return nil
}
