package main

import (
	"os"
	"path/filepath"
)

// finchHome returns the path to the finch home directory (~/.finch).
func finchHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".finch"), nil
}

func defaultSocketPath() string {
	home, err := finchHome()
	if err != nil {
		return "/tmp/finch.sock"
	}
	return filepath.Join(home, "finch.sock")
}

// portFilePath is where the daemon records the TCP port the shell should
// connect to when api_addr is "auto".
func portFilePath() string {
	home, err := finchHome()
	if err != nil {
		return "/tmp/finch.port"
	}
	return filepath.Join(home, "api.port")
}
