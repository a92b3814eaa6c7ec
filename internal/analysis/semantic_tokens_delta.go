package analysis

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DeltaThreshold is the share of the full data size above which a delta
// is not worth sending.
const DeltaThreshold = 0.7

// SemanticTokensDelta is either an edit list against an earlier result or
// the full token data when no useful edit list exists.
type SemanticTokensDelta struct {
	IsDelta bool
	Delta   *protocol.SemanticTokensDelta
	Full    *protocol.SemanticTokens
}

// Result returns the value to answer a semanticTokens/full/delta request with.
func (d *SemanticTokensDelta) Result() any {
	if d.IsDelta {
		return d.Delta
	}
	return d.Full
}

// ComputeSemanticTokensDelta compares two encoded token sets. The edit
// replaces the region between their common prefix and common suffix.
func ComputeSemanticTokensDelta(oldData, newData []uint32, newResultID string) *SemanticTokensDelta {
	if len(oldData) == 0 {
		return full(newData, newResultID)
	}

	edits := computeEdits(oldData, newData)
	if deltaSize(edits) > int(float64(len(newData))*DeltaThreshold) && len(newData) > 0 {
		return full(newData, newResultID)
	}
	return &SemanticTokensDelta{
		IsDelta: true,
		Delta: &protocol.SemanticTokensDelta{
			ResultId: &newResultID,
			Edits:    edits,
		},
	}
}

func full(data []uint32, resultID string) *SemanticTokensDelta {
	return &SemanticTokensDelta{
		Full: &protocol.SemanticTokens{ResultID: &resultID, Data: data},
	}
}

// computeEdits returns at most one edit. Edits start at token boundaries so
// a client never sees half a token replaced.
func computeEdits(oldData, newData []uint32) []protocol.SemanticTokensEdit {
	prefix := 0
	for prefix < len(oldData) && prefix < len(newData) && oldData[prefix] == newData[prefix] {
		prefix++
	}
	prefix -= prefix % 5

	suffix := 0
	for suffix < len(oldData)-prefix && suffix < len(newData)-prefix &&
		oldData[len(oldData)-1-suffix] == newData[len(newData)-1-suffix] {
		suffix++
	}
	suffix -= suffix % 5

	if prefix+suffix == len(oldData) && prefix+suffix == len(newData) {
		return []protocol.SemanticTokensEdit{}
	}
	return []protocol.SemanticTokensEdit{{
		Start:       uint32(prefix),
		DeleteCount: uint32(len(oldData) - suffix - prefix),
		Data:        newData[prefix : len(newData)-suffix],
	}}
}

// deltaSize counts the integers of an edit list, two per edit for its
// start and delete count.
func deltaSize(edits []protocol.SemanticTokensEdit) int {
	size := 0
	for _, e := range edits {
		size += 2 + len(e.Data)
	}
	return size
}
