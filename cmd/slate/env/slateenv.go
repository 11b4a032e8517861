package env

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SlateEnv carries project-wide defaults for jobs, loaded from a slateenv
// yaml file.
type SlateEnv struct {
	// default hyperparameters merged into every job spec
	Hyperparameters map[string]string `yaml:"hyperparameters"`

	// default compute resources (cpu, memory, ...) for jobs
	Resource map[string]string `yaml:"resource"`
}

func New() *SlateEnv {
	return new(SlateEnv)
}

// LoadSlateEnv loads SlateEnv found at filepath.
//
// When the file does not exist, an empty SlateEnv is returned without error.
func LoadSlateEnv(filepath string) (*SlateEnv, error) {

	env := SlateEnv{}

	content, err := os.ReadFile(filepath)
	if err != nil {
		return &env, nil
	}

	err = yaml.Unmarshal(content, &env)
	if err != nil {
		return nil, err
	}

	return &env, nil
}
