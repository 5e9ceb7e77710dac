package toolrequest

// Input is everything a matcher may look at for one chat turn.
type Input struct {
	Message  string
	Explicit *ToolRequest
	Context  map[string]any
}

// Matcher returns a request when it recognises the input, nil otherwise.
// Matchers must not panic on malformed input.
type Matcher func(in Input) *ToolRequest

// Resolver runs its matchers in order and returns the first hit.
type Resolver struct {
	matchers []Matcher
}

// NewResolver builds the standard chain: explicit, inline fence, context,
// then keyword heuristics.
func NewResolver(defaults Defaults) *Resolver {
	return NewResolverWith(
		MatchExplicit,
		MatchInlineFence,
		MatchContext,
		MatchHeuristic(defaults),
	)
}

func NewResolverWith(matchers ...Matcher) *Resolver {
	return &Resolver{matchers: matchers}
}

func (r *Resolver) Resolve(message string, explicit *ToolRequest, context map[string]any) *ToolRequest {
	in := Input{Message: message, Explicit: explicit, Context: context}
	for _, m := range r.matchers {
		if req := m(in); req != nil {
			return req
		}
	}
	return nil
}
