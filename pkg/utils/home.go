// Package utils provides filesystem helpers for iexec
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// IExecDirEnv is the environment variable that overrides the iexec configuration directory
	IExecDirEnv = "IEXEC_DIR"
	// IExecProfilesDirEnv is the environment variable that overrides the profiles directory
	IExecProfilesDirEnv = "IEXEC_PROFILES_DIR"
	// IExecHome is the name of the configuration directory inside the user's home
	IExecHome = ".iexec"
	// IExecProfilesDir is the name of the profiles directory within the iexec home
	IExecProfilesDir = "profiles"
)

// GetHome returns the user's home directory in a portable way
func GetHome() (string, error) {
	var home string

	if runtime.GOOS == "windows" {
		home = os.Getenv("USERPROFILE")
		if home == "" {
			home = os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		}
	} else {
		home = os.Getenv("HOME")
	}

	if home == "" {
		return "", fmt.Errorf("unable to determine home directory")
	}

	return home, nil
}

// GetIExecHome returns the iexec configuration directory, ~/.iexec unless
// $IEXEC_DIR is set
func GetIExecHome() (string, error) {
	if dir := os.Getenv(IExecDirEnv); dir != "" {
		return dir, nil
	}

	home, err := GetHome()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, IExecHome), nil
}

// GetProfilesDir returns the directory holding named launch profiles
func GetProfilesDir() (string, error) {
	if dir := os.Getenv(IExecProfilesDirEnv); dir != "" {
		return dir, nil
	}

	iexecHome, err := GetIExecHome()
	if err != nil {
		return "", err
	}

	return filepath.Join(iexecHome, IExecProfilesDir), nil
}
