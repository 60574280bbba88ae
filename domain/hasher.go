package domain

import "strings"

// Hasher is the core port for any hashing strategy.
type Hasher interface {
	Hash(data []byte) string
}

// AnswerFingerprint identifies a practicum answer independent of surrounding
// whitespace, so resubmitting the same text maps to the same record.
func AnswerFingerprint(h Hasher, answer string) string {
	return h.Hash([]byte(normalizeAnswer(answer)))
}

func normalizeAnswer(answer string) string {
	return strings.Join(strings.Fields(answer), " ")
}
