package file

import "fmt"

// -- file_read --

type ReadRequest struct {
	Path string `mapstructure:"path"`
}

func (r *ReadRequest) Validate() error {
	if r.Path == "" {
		return fmt.Errorf("Missing required parameter: path")
	}
	return nil
}

// -- file_write --

type WriteRequest struct {
	Path    string `mapstructure:"path"`
	Content string `mapstructure:"content"`
}

func (r *WriteRequest) Validate() error {
	if r.Path == "" {
		return fmt.Errorf("Missing required parameter: path")
	}
	return nil
}

// -- file_list --

type ListRequest struct {
	Directory string `mapstructure:"directory"`
}

// -- file_search --

type SearchRequest struct {
	Pattern string `mapstructure:"pattern"`
	Path    string `mapstructure:"path"`
}

func (r *SearchRequest) Validate() error {
	if r.Pattern == "" {
		return fmt.Errorf("Missing required parameter: pattern")
	}
	return nil
}

// -- file_grep --

type GrepRequest struct {
	Pattern string `mapstructure:"pattern"`
	Path    string `mapstructure:"path"`
	Include string `mapstructure:"include"`
}

func (r *GrepRequest) Validate() error {
	if r.Pattern == "" {
		return fmt.Errorf("Missing required parameter: pattern")
	}
	return nil
}

// -- edit --

type EditRequest struct {
	FilePath  string `mapstructure:"file_path"`
	OldString string `mapstructure:"old_string"`
	NewString string `mapstructure:"new_string"`
}
