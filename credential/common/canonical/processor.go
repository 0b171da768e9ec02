package canonical

import (
	"errors"
	"fmt"
	"strings"

	"github.com/piprate/json-gold/ld"
)

const (
	format             = "application/n-quads"
	defaultAlgorithm   = "URDNA2015"
	handleNormalizeErr = "error while parsing N-Quads; invalid quad. line:"
)

// ErrCanonicalization is returned when a credential cannot be canonicalized,
// typically because of an unresolvable context or an invalid claim graph.
var ErrCanonicalization = errors.New("canonicalization failed")

// ErrInvalidRDFFound is returned when the normalized view contains invalid RDF
// and strict validation is requested.
var ErrInvalidRDFFound = errors.New("invalid JSON-LD context")

// Processor is a JSON-LD processor producing canonical RDF datasets.
type Processor struct {
	algorithm string
}

// NewProcessor returns a new JSON-LD processor.
func NewProcessor(algorithm string) *Processor {
	if algorithm == "" {
		return Default()
	}
	return &Processor{algorithm}
}

// Default returns a new JSON-LD processor with the default RDF dataset algorithm.
func Default() *Processor {
	return &Processor{defaultAlgorithm}
}

// processorOpts holds options for canonicalization of JSON-LD docs.
type processorOpts struct {
	validateRDF      bool
	documentLoader   ld.DocumentLoader
	externalContexts []string
}

// Opt is an option for JSON-LD operations on docs.
type Opt func(opts *processorOpts)

// WithValidateRDF option validates the normalized view and fails if any
// invalid RDF dataset line is found.
func WithValidateRDF() Opt {
	return func(opts *processorOpts) {
		opts.validateRDF = true
	}
}

// WithDocumentLoader option passes a custom JSON-LD document loader.
func WithDocumentLoader(loader ld.DocumentLoader) Opt {
	return func(opts *processorOpts) {
		opts.documentLoader = loader
	}
}

// WithExternalContext option defines extra contexts for JSON-LD operations.
func WithExternalContext(context ...string) Opt {
	return func(opts *processorOpts) {
		opts.externalContexts = context
	}
}

func prepareOpts(opts []Opt) *processorOpts {
	procOpts := &processorOpts{}
	for _, opt := range opts {
		opt(procOpts)
	}
	return procOpts
}

// GetCanonicalDocument returns the canonized form of the given JSON-LD document.
func (p *Processor) GetCanonicalDocument(doc map[string]interface{}, opts ...Opt) ([]byte, error) {
	procOptions := prepareOpts(opts)

	ldOptions := ld.NewJsonLdOptions("")
	ldOptions.ProcessingMode = ld.JsonLd_1_1
	ldOptions.Algorithm = p.algorithm
	ldOptions.Format = format
	ldOptions.ProduceGeneralizedRdf = true
	if procOptions.documentLoader != nil {
		ldOptions.DocumentLoader = procOptions.documentLoader
	}

	if len(procOptions.externalContexts) > 0 {
		doc["@context"] = AppendExternalContexts(doc["@context"], procOptions.externalContexts...)
	}

	proc := ld.NewJsonLdProcessor()

	view, err := proc.Normalize(doc, ldOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to normalize JSON-LD document: %v", ErrCanonicalization, err)
	}

	result, ok := view.(string)
	if !ok {
		return nil, fmt.Errorf("%w: failed to normalize JSON-LD document, invalid view", ErrCanonicalization)
	}

	if procOptions.validateRDF {
		if err := validateStatements(result); err != nil {
			return nil, err
		}
	}

	return []byte(result), nil
}

// AppendExternalContexts appends external context(s) to the JSON-LD context,
// which can already hold one or several contexts.
func AppendExternalContexts(context interface{}, extraContexts ...string) []interface{} {
	var contexts []interface{}

	switch c := context.(type) {
	case string:
		contexts = append(contexts, c)
	case []interface{}:
		contexts = append(contexts, c...)
	}

	for i := range extraContexts {
		contexts = append(contexts, extraContexts[i])
	}

	return contexts
}

// Compact compacts the given JSON-LD object against the given context.
func (p *Processor) Compact(input map[string]interface{}, context interface{},
	opts ...Opt) (map[string]interface{}, error) {
	procOptions := prepareOpts(opts)

	ldOptions := ld.NewJsonLdOptions("")
	ldOptions.ProcessingMode = ld.JsonLd_1_1
	ldOptions.Format = format
	ldOptions.ProduceGeneralizedRdf = true
	if procOptions.documentLoader != nil {
		ldOptions.DocumentLoader = procOptions.documentLoader
	}

	if context == nil {
		context = map[string]interface{}{"@context": input["@context"]}
	}

	return ld.NewJsonLdProcessor().Compact(input, context, ldOptions)
}

// FromRDF rebuilds a compacted JSON-LD document from N-Quad statements,
// using the given context for compaction.
func (p *Processor) FromRDF(statements []string, context interface{},
	opts ...Opt) (map[string]interface{}, error) {
	procOptions := prepareOpts(opts)

	ldOptions := ld.NewJsonLdOptions("")
	ldOptions.ProcessingMode = ld.JsonLd_1_1
	ldOptions.Format = format
	ldOptions.ProduceGeneralizedRdf = true
	if procOptions.documentLoader != nil {
		ldOptions.DocumentLoader = procOptions.documentLoader
	}

	doc := strings.Join(statements, "\n")
	proc := ld.NewJsonLdProcessor()

	transformedDoc, err := proc.FromRDF(doc, ldOptions)
	if err != nil {
		return nil, fmt.Errorf("rdf processing failed: %w", err)
	}

	ctxDoc := map[string]interface{}{"@context": context}

	transformedDocMap, err := proc.Compact(transformedDoc, ctxDoc, ldOptions)
	if err != nil {
		return nil, fmt.Errorf("compacting failed: %w", err)
	}

	return transformedDocMap, nil
}

// validateStatements checks every line of the normalized view for invalid RDF.
// Normalization with generalized RDF can emit lines that are not valid
// N-Quads, typically from terms that expand to malformed IRIs; a proof must
// never be computed over such a view.
func validateStatements(view string) error {
	for _, row := range strings.Split(view, "\n") {
		if strings.TrimSpace(row) == "" {
			continue
		}

		if _, err := ld.ParseNQuads(row); err != nil {
			if !strings.Contains(err.Error(), handleNormalizeErr) {
				return fmt.Errorf("%w: %v", ErrCanonicalization, err)
			}
			return ErrInvalidRDFFound
		}
	}
	return nil
}
