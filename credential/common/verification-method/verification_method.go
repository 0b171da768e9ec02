package verificationmethod

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pilacorp/go-credential-engine/credential/common/crypto"
)

// ErrResolver is returned when DID resolution fails.
var ErrResolver = errors.New("DID resolution failed")

// VerificationMethodEntry represents a single verification method in a DID Document.
type VerificationMethodEntry struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Controller   string `json:"controller"`
	PublicKeyHex string `json:"publicKeyHex"`
}

// DIDDocument represents the structure of a resolved DID Document.
type DIDDocument struct {
	Context             []string                  `json:"@context"`
	ID                  string                    `json:"id"`
	VerificationMethod  []VerificationMethodEntry `json:"verificationMethod"`
	Authentication      []string                  `json:"authentication"`
	AssertionMethod     []string                  `json:"assertionMethod"`
	Controller          string                    `json:"controller"`
	DIDDocumentMetadata map[string]interface{}    `json:"didDocumentMetadata"`
}

// Resolver is a client for resolving DIDs from a resolver endpoint.
type Resolver struct {
	baseURL string
	client  *http.Client
}

// NewResolver creates a new DID resolver with a given base URL.
func NewResolver(baseURL string) *Resolver {
	return &Resolver{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// ResolvePublicKey retrieves the public key in hex format for a given
// verification method URL.
func (r *Resolver) ResolvePublicKey(ctx context.Context, verificationMethodURL string) (string, error) {
	didPart, _, _ := strings.Cut(verificationMethodURL, "#")
	if didPart == "" {
		return "", fmt.Errorf("%w: invalid verification method URL, could not extract DID: %s",
			ErrResolver, verificationMethodURL)
	}

	doc, err := r.ResolveToDoc(ctx, didPart)
	if err != nil {
		return "", err
	}

	for _, vm := range doc.VerificationMethod {
		if vm.ID == verificationMethodURL {
			return strings.TrimPrefix(vm.PublicKeyHex, "0x"), nil
		}
	}

	// Fall back to the document's first verification method when the URL
	// names the bare DID.
	if didPart == verificationMethodURL && len(doc.VerificationMethod) > 0 {
		return strings.TrimPrefix(doc.VerificationMethod[0].PublicKeyHex, "0x"), nil
	}

	return "", fmt.Errorf("%w: verification method %q not found in DID document",
		ErrResolver, verificationMethodURL)
}

// ResolveToDoc fetches and parses a DID document from the resolver endpoint.
func (r *Resolver) ResolveToDoc(ctx context.Context, did string) (*DIDDocument, error) {
	apiURL := r.baseURL + "/" + url.PathEscape(did)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build DID resolver request: %v", ErrResolver, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to make HTTP request to DID resolver: %v", ErrResolver, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: DID resolver API returned non-200 status: %s", ErrResolver, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body from DID resolver: %v", ErrResolver, err)
	}

	var doc DIDDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal DID document JSON: %v", ErrResolver, err)
	}

	return &doc, nil
}

// CheckVerificationMethod verifies that the provided private key matches the
// public key associated with the given verification method in its DID document.
func (r *Resolver) CheckVerificationMethod(ctx context.Context, privateKey, verificationMethod string) (bool, error) {
	if privateKey == "" || verificationMethod == "" {
		return false, fmt.Errorf("private key or verification method is empty")
	}

	publicKey, err := r.ResolvePublicKey(ctx, verificationMethod)
	if err != nil {
		return false, err
	}

	isValid, err := crypto.VerifyKeyPairFromHex(privateKey, publicKey)
	if err != nil {
		return false, fmt.Errorf("failed to verify key pair for %q: %w", verificationMethod, err)
	}
	return isValid, nil
}
