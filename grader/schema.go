/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package grader

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Judgment is the structured verdict the grading model returns for one
// verification phase.
type Judgment struct {
	Pass      bool   `json:"pass" jsonschema:"description=Whether the criterion is satisfied,required"`
	Reasoning string `json:"reasoning" jsonschema:"description=Explanation of the verdict,required"`
}

// judgmentSchemaJSON is embedded in every grading prompt so evaluators
// without native structured output still return the right shape.
var judgmentSchemaJSON = func() string {
	r := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		DoNotReference:             true,
	}
	b, err := json.Marshal(r.Reflect(&Judgment{}))
	if err != nil {
		panic(err)
	}
	return string(b)
}()
