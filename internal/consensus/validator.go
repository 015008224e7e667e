package consensus

import (
	"fmt"

	"github.com/ironpeak/mimblecore/pkg/block"
)

// Validator validates block headers against consensus rules. Body
// validation (signatures, range proofs, balance equations, MMR roots) is a
// separate concern handled by internal/validation once the header is
// trusted; this validator never inspects a block's body.
type Validator struct {
	engine Engine
}

// NewValidator creates a block validator with the given consensus engine.
func NewValidator(engine Engine) *Validator {
	return &Validator{engine: engine}
}

// ValidateBlock checks a block's header against consensus rules.
func (v *Validator) ValidateBlock(blk *block.Block) error {
	if err := v.engine.VerifyHeader(blk.Header); err != nil {
		return fmt.Errorf("consensus: %w", err)
	}
	return nil
}
