package env

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads the given file (e.g. ".env") and sets an environment variable for each line of
// the form KEY=VALUE or export KEY=VALUE. Empty lines and lines starting with # are skipped.
// Variables already set in the environment keep their value. The file may be missing; that
// is not an error.
func Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	vars, err := Parse(bufio.NewScanner(f))
	if err != nil {
		return fmt.Errorf("env: %s: %w", path, err)
	}
	for _, kv := range vars {
		if _, set := os.LookupEnv(kv[0]); set {
			continue
		}
		if err := os.Setenv(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// Parse returns the KEY=VALUE pairs in file order. Malformed lines are skipped.
func Parse(scanner *bufio.Scanner) ([][2]string, error) {
	var out [][2]string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		i := strings.Index(line, "=")
		if i <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:i])
		value := strings.TrimSpace(line[i+1:])
		if key == "" || strings.ContainsAny(key, " \t") {
			continue
		}
		// Remove surrounding quotes if present
		if len(value) >= 2 && (value[0] == '"' && value[len(value)-1] == '"' || value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
		out = append(out, [2]string{key, value})
	}
	return out, scanner.Err()
}
