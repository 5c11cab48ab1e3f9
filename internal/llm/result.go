package llm

// ResultKind distinguishes the three outcomes of a gateway call.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultPolicyRejected
	ResultFailure
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultPolicyRejected:
		return "policy_rejected"
	default:
		return "error"
	}
}

// Result is the outcome of a gateway call. Payload is set on success, Reason
// on failure; a policy rejection carries neither.
type Result struct {
	Kind    ResultKind
	Payload string
	Reason  string
}

// Success wraps a usable payload.
func Success(payload string) Result {
	return Result{Kind: ResultSuccess, Payload: payload}
}

// PolicyRejected reports that the provider refused the request on safety grounds.
func PolicyRejected() Result {
	return Result{Kind: ResultPolicyRejected}
}

// Failure carries a user-facing reason.
func Failure(reason string) Result {
	return Result{Kind: ResultFailure, Reason: reason}
}

func (r Result) OK() bool { return r.Kind == ResultSuccess }

// Message returns the displayable text of the result: the payload on success,
// the reason otherwise.
func (r Result) Message() string {
	if r.Kind == ResultSuccess {
		return r.Payload
	}
	return r.Reason
}
