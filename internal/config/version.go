package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the current tradewind release. Configuration documents are
// accepted when their major.minor matches this version.
const Version = "0.4.2"

// versionPrefix extracts "major.minor" from a version string.
func versionPrefix(v string) (string, error) {
	parts := strings.SplitN(strings.TrimPrefix(v, "v"), ".", 3)
	if len(parts) < 2 {
		return "", fmt.Errorf("malformed version %q", v)
	}
	for _, p := range parts[:2] {
		if _, err := strconv.Atoi(p); err != nil {
			return "", fmt.Errorf("malformed version %q", v)
		}
	}
	return parts[0] + "." + parts[1], nil
}

// IsVersionAccepted reports whether a document written for version v can be
// rendered by this release. Patch differences are tolerated; any other
// difference requires running `tradewind upgrade` first.
func IsVersionAccepted(v string) bool {
	if v == "" {
		return false
	}
	docPrefix, err := versionPrefix(v)
	if err != nil {
		return false
	}
	curPrefix, err := versionPrefix(Version)
	if err != nil {
		return false
	}
	return docPrefix == curPrefix
}
