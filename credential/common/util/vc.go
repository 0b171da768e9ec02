package util

import (
	"fmt"

	"github.com/pilacorp/go-credential-engine/credential/common/dto"
)

// JSONMap represents a JSON object as a map.
type JSONMap = map[string]interface{}

// MapSlice transforms a slice of type T to a slice of type U using a mapping function.
func MapSlice[T any, U any](slice []T, mapFn func(T) U) []U {
	result := make([]U, 0, len(slice))
	for _, v := range slice {
		result = append(result, mapFn(v))
	}
	return result
}

// ShallowCopyObj copies a generic JSON object map.
func ShallowCopyObj(obj JSONMap) JSONMap {
	result := make(JSONMap, len(obj))
	for k, v := range obj {
		result[k] = v
	}
	return result
}

// SplitJSONObj splits a JSON object into the named fields and the rest.
func SplitJSONObj(obj JSONMap, fields ...string) (JSONMap, JSONMap) {
	named := make(JSONMap, len(fields))
	rest := make(JSONMap, len(obj))

	for k, v := range obj {
		rest[k] = v
	}
	for _, f := range fields {
		if v, ok := rest[f]; ok {
			named[f] = v
			delete(rest, f)
		}
	}
	return named, rest
}

// SerializeProof converts a Proof struct to a JSON-LD compatible object.
func SerializeProof(proof dto.Proof) JSONMap {
	proofMap := make(JSONMap)
	if proof.Type != "" {
		proofMap["type"] = proof.Type
	}
	if proof.Created != "" {
		proofMap["created"] = proof.Created
	}
	if proof.VerificationMethod != "" {
		proofMap["verificationMethod"] = proof.VerificationMethod
	}
	if proof.ProofPurpose != "" {
		proofMap["proofPurpose"] = proof.ProofPurpose
	}
	if proof.ProofValue != "" {
		proofMap["proofValue"] = proof.ProofValue
	}
	if proof.Cryptosuite != "" {
		proofMap["cryptosuite"] = proof.Cryptosuite
	}
	if proof.Challenge != "" {
		proofMap["challenge"] = proof.Challenge
	}
	if proof.Domain != "" {
		proofMap["domain"] = proof.Domain
	}
	if len(proof.StatementDigests) > 0 {
		proofMap["statementDigests"] = MapSlice(proof.StatementDigests,
			func(d string) interface{} { return d })
	}
	if len(proof.DisclosedIndexes) > 0 {
		proofMap["disclosedIndexes"] = MapSlice(proof.DisclosedIndexes,
			func(i int) interface{} { return float64(i) })
	}
	if proof.Nonce != "" {
		proofMap["nonce"] = proof.Nonce
	}
	return proofMap
}

// ParseProof converts a single proof map into a Proof struct.
func ParseProof(proof JSONMap) (dto.Proof, error) {
	var result dto.Proof
	if t, ok := proof["type"].(string); ok && t != "" {
		result.Type = t
	} else {
		return dto.Proof{}, fmt.Errorf("failed to parse proof: invalid or missing type field")
	}
	if vm, ok := proof["verificationMethod"].(string); ok && vm != "" {
		result.VerificationMethod = vm
	} else {
		return dto.Proof{}, fmt.Errorf("failed to parse proof: invalid or missing verificationMethod field")
	}
	if created, ok := proof["created"].(string); ok {
		result.Created = created
	}
	if pp, ok := proof["proofPurpose"].(string); ok {
		result.ProofPurpose = pp
	}
	if pv, ok := proof["proofValue"].(string); ok {
		result.ProofValue = pv
	}
	if cs, ok := proof["cryptosuite"].(string); ok {
		result.Cryptosuite = cs
	}
	if ch, ok := proof["challenge"].(string); ok {
		result.Challenge = ch
	}
	if dm, ok := proof["domain"].(string); ok {
		result.Domain = dm
	}
	if nonce, ok := proof["nonce"].(string); ok {
		result.Nonce = nonce
	}
	if digests, ok := proof["statementDigests"].([]interface{}); ok {
		for _, d := range digests {
			ds, ok := d.(string)
			if !ok {
				return dto.Proof{}, fmt.Errorf("failed to parse proof: statement digest is not a string")
			}
			result.StatementDigests = append(result.StatementDigests, ds)
		}
	}
	if indexes, ok := proof["disclosedIndexes"].([]interface{}); ok {
		for _, idx := range indexes {
			n, ok := idx.(float64)
			if !ok || n != float64(int(n)) || n < 0 {
				return dto.Proof{}, fmt.Errorf("failed to parse proof: disclosed index is not a non-negative integer")
			}
			result.DisclosedIndexes = append(result.DisclosedIndexes, int(n))
		}
	}
	return result, nil
}

// FirstProof extracts the first proof object from a credential's proof member,
// which may be a single object or an array of objects.
func FirstProof(proofRaw interface{}) (JSONMap, error) {
	switch p := proofRaw.(type) {
	case map[string]interface{}:
		return p, nil
	case []interface{}:
		if len(p) == 0 {
			return nil, fmt.Errorf("proof array is empty")
		}
		proofMap, ok := p[0].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("proof entry is not a JSON object, got %T", p[0])
		}
		return proofMap, nil
	default:
		return nil, fmt.Errorf("unsupported proof format: %T", proofRaw)
	}
}
