package remote

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var contractDocument []byte

// operationIDs maps each Op to the operationId describing it in the embedded
// contract.
var operationIDs = map[Op]string{
	OpCreateIdentity: "createIdentity",
	OpFetchForm:      "fetchForm",
	OpSubmitForm:     "submitForm",
}

// Contract checks response payloads against the OpenAPI description of the
// remote service. Operations are matched by operationId so the client can be
// pointed at different endpoint paths.
type Contract struct {
	responses map[Op]*openapi3.Schema
}

var (
	defaultContractOnce sync.Once
	defaultContract     *Contract
	defaultContractErr  error
)

// DefaultContract returns the contract parsed from the embedded document.
func DefaultContract() (*Contract, error) {
	defaultContractOnce.Do(func() {
		defaultContract, defaultContractErr = LoadContract(context.Background(), contractDocument)
	})
	return defaultContract, defaultContractErr
}

// LoadContract parses an OpenAPI 3 document and collects the success response
// schema of every known operation.
func LoadContract(ctx context.Context, raw []byte) (*Contract, error) {
	if len(raw) == 0 {
		return nil, errors.New("remote: contract document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("remote: load contract: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("remote: validate contract: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("remote: contract does not contain any paths")
	}

	byID := make(map[string]*openapi3.Operation)
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, operation := range item.Operations() {
			if operation != nil && operation.OperationID != "" {
				byID[operation.OperationID] = operation
			}
		}
	}

	contract := &Contract{responses: make(map[Op]*openapi3.Schema, len(operationIDs))}
	for op, id := range operationIDs {
		operation, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("remote: contract has no operation %q", id)
		}
		schema := successSchema(operation.Responses)
		if schema == nil {
			return nil, fmt.Errorf("remote: operation %q has no JSON success response", id)
		}
		contract.responses[op] = schema
	}
	return contract, nil
}

func successSchema(responses *openapi3.Responses) *openapi3.Schema {
	if responses == nil {
		return nil
	}
	ref := responses.Status(http.StatusOK)
	if ref == nil || ref.Value == nil {
		return nil
	}
	media := ref.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil {
		return nil
	}
	return media.Schema.Value
}

// ValidateResponse checks a raw success body for op.
func (c *Contract) ValidateResponse(op Op, body []byte) error {
	if c == nil {
		return nil
	}
	schema, ok := c.responses[op]
	if !ok {
		return fmt.Errorf("remote: no contract for %s", op)
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("remote: decode %s response: %w", op, err)
	}
	if err := schema.VisitJSON(decoded); err != nil {
		return fmt.Errorf("remote: %s response violates contract: %w", op, err)
	}
	return nil
}
