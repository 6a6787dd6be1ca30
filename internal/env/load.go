package env

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads a .env file and sets an environment variable for each KEY=VALUE line that is not
// already set, so the real environment wins over the file. Empty lines, # comments and an
// optional "export " prefix are handled. A missing file is not an error.
func Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	vars, err := parse(bufio.NewScanner(f))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, kv := range vars {
		if _, ok := os.LookupEnv(kv[0]); ok {
			continue
		}
		if err := os.Setenv(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// parse returns the KEY=VALUE pairs in file order.
func parse(scanner *bufio.Scanner) ([][2]string, error) {
	var vars [][2]string
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
		if key == "" {
			continue
		}
		// Remove surrounding quotes if present
		if len(value) >= 2 && (value[0] == '"' && value[len(value)-1] == '"' || value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
		vars = append(vars, [2]string{key, value})
	}
	return vars, scanner.Err()
}
