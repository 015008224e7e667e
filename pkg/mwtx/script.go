package mwtx

import (
	"errors"
	"fmt"

	"github.com/ironpeak/mimblecore/pkg/mwcrypto"
)

// Script is a small stack-based program an input must satisfy to authorize
// spending its referenced output. It is deliberately minimal: a single
// PushPubKey opcode followed by CheckSig covers the common "pay to public
// key" case the orchestrator's script-offset equation depends on, without
// pulling in the full Tari script opcode set.
type Script []byte

// Opcodes.
const (
	OpPushPubKey byte = 0x01 // followed by 33 compressed-point bytes
	OpCheckSig   byte = 0xac
	OpDrop       byte = 0x75
)

// InputData carries the witness data a script consumes, e.g. nothing for a
// bare PushPubKey script, or a signature/preimage for richer scripts.
type InputData []byte

// ErrScriptFailed is returned when script execution does not end in a
// single public key on the stack.
var ErrScriptFailed = errors.New("script execution failed")

// Execute runs the script, pushing data onto a stack, and returns the
// public key left on top once execution completes. Any opcode outside the
// supported set, or a final stack that is not exactly one 33-byte public
// key, fails.
func (s Script) Execute(data InputData) (mwcrypto.PubKey, error) {
	var stack [][]byte
	if len(data) > 0 {
		stack = append(stack, []byte(data))
	}

	i := 0
	for i < len(s) {
		op := s[i]
		switch op {
		case OpPushPubKey:
			if i+34 > len(s) {
				return mwcrypto.PubKey{}, fmt.Errorf("%w: truncated push", ErrScriptFailed)
			}
			stack = append(stack, append([]byte(nil), s[i+1:i+34]...))
			i += 34
		case OpCheckSig:
			// Presence of a valid public key on the stack is sufficient here;
			// the actual signature check happens via the input's own
			// script-signature field (see TransactionInput.RunAndVerifyScript).
			i++
		case OpDrop:
			if len(stack) == 0 {
				return mwcrypto.PubKey{}, fmt.Errorf("%w: drop on empty stack", ErrScriptFailed)
			}
			stack = stack[:len(stack)-1]
			i++
		default:
			return mwcrypto.PubKey{}, fmt.Errorf("%w: unknown opcode 0x%02x", ErrScriptFailed, op)
		}
	}

	if len(stack) != 1 {
		return mwcrypto.PubKey{}, fmt.Errorf("%w: final stack has %d items, want 1", ErrScriptFailed, len(stack))
	}
	return mwcrypto.PubKeyFromBytes(stack[0])
}
