package formflow

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-formflow/pkg/remote"
)

// LoadContract parses an OpenAPI 3 description of a form service whose
// operations carry the createIdentity, fetchForm and submitForm operation ids.
// Pass the result as Options.Contract to validate responses against it.
func LoadContract(ctx context.Context, raw []byte) (*remote.Contract, error) {
	return remote.LoadContract(ctx, raw)
}

// LoadContractFile is LoadContract for a document on disk.
func LoadContractFile(ctx context.Context, path string) (*remote.Contract, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formflow: read contract: %w", err)
	}
	return LoadContract(ctx, raw)
}
