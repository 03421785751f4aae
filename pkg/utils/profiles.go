package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveProfileFile resolves a launch profile reference with the following logic:
// 1. If the reference has no extension, append .yaml
// 2. If the path is absolute, use it as-is
// 3. If the path is relative, first check the current directory, then the profiles directory
// 4. Return an error if the resolved file doesn't exist
func ResolveProfileFile(profile string) (string, error) {
	if filepath.Ext(profile) == "" {
		profile = profile + ".yaml"
	}

	if filepath.IsAbs(profile) {
		if _, err := os.Stat(profile); err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("profile not found: %s", profile)
			}
			return "", fmt.Errorf("failed to access profile %s: %w", profile, err)
		}
		return profile, nil
	}

	if _, err := os.Stat(profile); err == nil {
		absPath, err := filepath.Abs(profile)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path for %s: %w", profile, err)
		}
		return absPath, nil
	}

	profilesDir, err := GetProfilesDir()
	if err != nil {
		return "", fmt.Errorf("failed to get profiles directory: %w", err)
	}
	profilesDirPath := filepath.Join(profilesDir, profile)

	if _, err := os.Stat(profilesDirPath); err == nil {
		return profilesDirPath, nil
	}

	return "", fmt.Errorf("profile not found. Searched in:\n%s\n%s",
		profile, profilesDirPath)
}
