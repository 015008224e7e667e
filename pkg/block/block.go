// Package block defines block types and validation.
package block

import "github.com/ironpeak/mimblecore/pkg/mwtx"

// Block represents a block in the chain: a header plus the aggregate
// transactional body (inputs, outputs, kernels) the body validator checks.
type Block struct {
	Header *Header           `json:"header"`
	Body   *mwtx.AggregateBody `json:"body"`
}

// NewBlock creates a new block with the given header and body.
func NewBlock(header *Header, body *mwtx.AggregateBody) *Block {
	return &Block{
		Header: header,
		Body:   body,
	}
}
