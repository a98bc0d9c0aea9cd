package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-publisher/pkg/interfaces"
)

// ErrFrontMatterInvalid is matched by every FrontMatterError.
var ErrFrontMatterInvalid = errors.New("frontmatter invalid")

//go:embed frontmatter.schema.json
var frontMatterSchema []byte

const frontMatterSchemaURL = "frontmatter.schema.json"

var compiledFrontMatter = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema(frontMatterSchemaURL, frontMatterSchema)
})

// Issue is a single schema violation.
type Issue struct {
	Location string
	Message  string
}

// FrontMatterError lists every field that broke the platform limits.
type FrontMatterError struct {
	Issues []Issue
	Cause  error
}

func (e *FrontMatterError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrFrontMatterInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return "frontmatter: " + strings.Join(parts, "; ")
}

func (e *FrontMatterError) Unwrap() error {
	return ErrFrontMatterInvalid
}

// Issues extracts the violations carried by err.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var fmErr *FrontMatterError
	if errors.As(err, &fmErr) && fmErr != nil {
		return fmErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectIssues(validationErr)
	}
	return []Issue{{Message: err.Error()}}
}

// ValidateFrontMatter checks article metadata against the limits the
// drafting platform enforces, so a bad title fails before any upload.
func ValidateFrontMatter(fm interfaces.FrontMatter) error {
	schema, err := compiledFrontMatter()
	if err != nil {
		return fmt.Errorf("compile frontmatter schema: %w", err)
	}
	payload, err := toPayload(fm)
	if err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		return &FrontMatterError{Issues: Issues(err), Cause: err}
	}
	return nil
}

func toPayload(fm interfaces.FrontMatter) (map[string]any, error) {
	encoded, err := json.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	payload := map[string]any{}
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return nil, fmt.Errorf("decode frontmatter: %w", err)
	}
	return payload, nil
}

func compileSchema(url string, source []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(url, bytes.NewReader(source)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	issues := []Issue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
