// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Load reads the YAML configuration file at the given path on top of the
// default configuration and validates the result.
func Load(path string) (Config, error) {
	config := Default()

	file, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(file, &config); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}

	return config, nil
}

// Marshal encodes the configuration as YAML.
func (config Config) Marshal() ([]byte, error) {
	return yaml.Marshal(config)
}

// Validate checks every option against its allowed range.
func (config Config) Validate() error {
	err := validate.Struct(config)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	var details strings.Builder
	for _, err := range errs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}

		field := strings.TrimPrefix(err.Namespace(), "Config.")
		switch err.Tag() {
		case "oneof":
			details.WriteString(fmt.Sprintf("%s must be one of [%s]", field, err.Param()))
		case "min", "gte":
			details.WriteString(fmt.Sprintf("%s must be at least %s", field, err.Param()))
		case "max", "lte":
			details.WriteString(fmt.Sprintf("%s must be at most %s", field, err.Param()))
		case "gt":
			details.WriteString(fmt.Sprintf("%s must be greater than %s", field, err.Param()))
		case "gtefield":
			details.WriteString(fmt.Sprintf("%s must not be less than %s", field, err.Param()))
		case "required_if":
			details.WriteString(fmt.Sprintf("%s is required", field))
		default:
			if err.Kind() == reflect.Slice {
				details.WriteString(fmt.Sprintf("%s has an invalid element", field))
				continue
			}

			details.WriteString(fmt.Sprintf("%s failed %s validation", field, err.Tag()))
		}
	}

	return errors.New("invalid configuration: " + details.String())
}
