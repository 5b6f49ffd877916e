/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	DefaultEnvConfigFile = os.Getenv("CFEMAILROUTE_DEFAULT_ENV_CONFIG")
)

// ApplyFlagsFromEnvFile sets flags which were not given on the command line
// from the configured env file(s). Multiple files are separated by ":". With
// a nil mapping, env names are derived from the flag names.
func ApplyFlagsFromEnvFile(cmd *cobra.Command, mapping map[string]string) error {
	if DefaultEnvConfigFile == "" {
		return nil
	}

	var envConfigFiles []string
	for _, envConfigFile := range strings.Split(DefaultEnvConfigFile, ":") {
		if envConfigFile == "" {
			continue
		}
		abs, err := filepath.Abs(envConfigFile)
		if err != nil {
			return fmt.Errorf("invalid config path: %w", err)
		}
		envConfigFiles = append(envConfigFiles, abs)
	}

	envConfig, err := godotenv.Read(envConfigFiles...)
	if err != nil {
		return fmt.Errorf("config read error: %w", err)
	}

	if mapping == nil {
		mapping = make(map[string]string)
		cmd.Flags().VisitAll(func(flag *pflag.Flag) {
			if flag.Changed || flag.Name == "help" || flag.Name == "config" {
				// Ignore flags which are set already or are on black list.
				return
			}
			mapping[flag.Name] = ""
		})
	}

	for flagName, envName := range mapping {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			return fmt.Errorf("unknown flag in config mapping: %v", flagName)
		}
		if flag.Changed {
			continue
		}

		sliceValue, isSlice := flag.Value.(pflag.SliceValue)

		if envName == "" {
			// Change all - to _ which is all in most of the cases.
			envName = strings.ReplaceAll(flagName, "-", "_")
			if isSlice {
				envName += "s"
			}
		}
		if v, ok := envConfig[envName]; ok {
			if isSlice {
				err = sliceValue.Replace(strings.Split(v, " "))
			} else {
				err = flag.Value.Set(v)
			}
			if err != nil {
				return fmt.Errorf("failed to apply %v config: %w", envName, err)
			}
		}
	}

	return nil
}
