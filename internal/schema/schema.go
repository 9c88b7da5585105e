// Package schema validates project seed files before import.
//
// Seeds are YAML documents describing a project, its camera configs,
// and their deployment windows. They are validated against a CUE schema
// (structure, id shape, required fields) before being converted into
// model documents, so a malformed seed fails loudly at import instead
// of seeding an inconsistent catalog.
package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// projectSchema is the CUE definition seed files must satisfy. Field
// names mirror the stored document shape; "_id" must be quoted since a
// leading underscore marks a hidden field in CUE.
const projectSchema = `
#Deployment: {
	"_id"?:     string & !=""
	name:       string & !=""
	timezone:   string & !=""
	startDate?: string & !=""
	editable:   bool | *true
}

#CameraConfig: {
	"_id":       string & !=""
	deployments: [...#Deployment] | *[]
}

#View: {
	"_id"?:    string & !=""
	name:      string & !=""
	editable:  bool | *true
	filters: {
		cameras?:     [...string]
		deployments?: [...string]
		labels?:      [...string]
	} | *{}
}

#Project: {
	"_id":     string & =~"^[a-z0-9][a-z0-9_-]*$"
	name:      string & !=""
	timezone:  string & !=""
	cameraConfigs: [...#CameraConfig] | *[]
	views:     [...#View] | *[]
}
`

// ValidateSeed checks a decoded seed document against the project
// schema. Errors include CUE's field positions where available.
func ValidateSeed(raw map[string]any) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(projectSchema)
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("internal: project schema does not compile: %w", err)
	}
	def := schemaVal.LookupPath(cue.ParsePath("#Project"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("internal: #Project definition missing: %w", err)
	}

	data := ctx.Encode(raw)
	if err := data.Err(); err != nil {
		return fmt.Errorf("encoding seed for validation: %w", err)
	}

	unified := def.Unify(data)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return fmt.Errorf("seed does not satisfy project schema:\n%s", cueerrors.Details(err, nil))
	}
	return nil
}
