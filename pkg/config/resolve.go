package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/inercia/iexec/pkg/common"
	"github.com/inercia/iexec/pkg/utils"
)

// LoadProfile loads a launch profile from a reference, which may be:
//   - an http:// or https:// URL, downloaded into memory
//   - a file:// URL
//   - a path, absolute or relative to the current directory
//   - a profile name looked up in the profiles directory (see utils.GetProfilesDir)
//
// The profile is loaded before any OS state is changed, so a relative path
// resolves against the caller's directory, not the configured working_dir.
func LoadProfile(ref string, logger *common.Logger) (*Profile, error) {
	if logger == nil {
		logger = common.GetLogger()
	}
	if ref == "" {
		return nil, fmt.Errorf("profile reference is empty")
	}

	parsedURL, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid profile reference: %w", err)
	}

	switch parsedURL.Scheme {
	case "http", "https":
		logger.Info("Downloading profile from URL: %s", ref)
		data, err := common.FetchURLText(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to download profile: %w", err)
		}
		return ParseProfile(data)

	case "file":
		return loadProfileFile(parsedURL.Path, logger)

	case "":
		path, err := utils.ResolveProfileFile(ref)
		if err != nil {
			return nil, err
		}
		return loadProfileFile(path, logger)
	}

	// a single-letter "scheme" is a Windows drive, everything else is unknown
	if len(parsedURL.Scheme) == 1 {
		return loadProfileFile(ref, logger)
	}
	return nil, fmt.Errorf("unsupported URL scheme: %s", parsedURL.Scheme)
}

func loadProfileFile(path string, logger *common.Logger) (*Profile, error) {
	logger.Info("Using profile file: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return ParseProfile(data)
}
