package drip

import "encoding/json"

// Outcome is the terminal state of a single visit.
type Outcome int

const (
	OutcomeError            Outcome = -1
	OutcomeOK               Outcome = 0
	OutcomeRandomNotMet     Outcome = 1
	OutcomeAlreadySent      Outcome = 2
	OutcomeTooEarly         Outcome = 3
	OutcomeLocked           Outcome = 4
	OutcomeNoPendingMessage Outcome = 5
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "OK"
	case OutcomeRandomNotMet:
		return "randomnotmet"
	case OutcomeAlreadySent:
		return "alreadysent"
	case OutcomeTooEarly:
		return "tooearly"
	case OutcomeLocked:
		return "locked"
	case OutcomeNoPendingMessage:
		return "nopendingmessage"
	default:
		return "error"
	}
}

// Result is what a visit reports. Err is set only for OutcomeError.
type Result struct {
	Outcome Outcome
	Err     error
}

func resultOf(o Outcome) Result { return Result{Outcome: o} }

func failed(err error) Result { return Result{Outcome: OutcomeError, Err: err} }

// Code is the numeric value exposed to trigger callers.
func (r Result) Code() int { return int(r.Outcome) }

// Message is the short label exposed to trigger callers.
func (r Result) Message() string {
	if r.Outcome == OutcomeError && r.Err != nil {
		return "error: " + r.Err.Error()
	}
	return r.Outcome.String()
}

// MarshalJSON renders the result as {"val": <code>, "msg": <label>}.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Val int    `json:"val"`
		Msg string `json:"msg"`
	}{Val: r.Code(), Msg: r.Message()})
}

// Report pairs a visit result with the queue it belongs to.
type Report struct {
	Collection string `json:"collection"`
	Result     Result `json:"result"`
}
