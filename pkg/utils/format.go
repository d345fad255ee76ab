// This file is part of MinIO VSFSCK
// Copyright (c) 2026 MinIO, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package utils

import (
	"encoding/json"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"
)

// ToJSON returns obj as indented JSON.
func ToJSON(obj interface{}) (string, error) {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return "", fmt.Errorf("unable to marshal to JSON; %w", err)
	}
	return string(data), nil
}

// ToYAML returns obj as YAML. Field names follow the JSON tags of obj.
func ToYAML(obj interface{}) (string, error) {
	data, err := yaml.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("unable to marshal to YAML; %w", err)
	}
	return string(data), nil
}

// Format writes obj to w in the named format, json or yaml.
func Format(w io.Writer, format string, obj interface{}) error {
	var (
		out string
		err error
	)
	switch format {
	case "json":
		out, err = ToJSON(obj)
	case "yaml":
		out, err = ToYAML(obj)
	default:
		return fmt.Errorf("unknown output format %v", format)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
