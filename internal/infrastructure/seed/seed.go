// Package seed reads demo accounts from a YAML file.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

// File is the on-disk layout of a seed file.
type File struct {
	Users []User `yaml:"users"`
}

type User struct {
	Name     string `yaml:"name"`
	LastName string `yaml:"lastName"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// Load parses the seed file at path. Unknown keys are rejected so typos do
// not silently drop accounts.
func Load(path string) ([]ports.PersonInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	out := make([]ports.PersonInput, 0, len(file.Users))
	for i, u := range file.Users {
		if u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("seed file %s: user %d: email and password are required", path, i)
		}
		out = append(out, ports.PersonInput{
			Name:     u.Name,
			LastName: u.LastName,
			Email:    u.Email,
			Password: u.Password,
			Role:     u.Role,
		})
	}
	return out, nil
}
