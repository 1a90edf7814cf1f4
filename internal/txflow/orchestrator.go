// Package txflow runs multi-step on-chain actions such as approve-then-stake
// with a shared pending flag, truncated error reporting and input reset on
// success.
package txflow

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/TechyByFin/byfin-dashboard/internal/chain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Errors returned before any transaction is submitted. In these cases the
// PendingAction is left untouched.
var (
	ErrNoSteps      = errors.New("action has no steps")
	ErrBusy         = errors.New("another action is still pending")
	ErrNotConnected = errors.New("no wallet connected")
)

// Step is one write call of an action.
type Step struct {
	Label    string // shown while the step is pending, e.g. "Approve BYFN"
	Contract common.Address
	ABI      *abi.ABI
	Method   string
	Args     []interface{}
}

// Gateway submits write calls and waits for their receipts.
type Gateway interface {
	Submit(ctx context.Context, to common.Address, iface *abi.ABI, method string, args ...interface{}) (common.Hash, error)
	WaitForConfirmation(ctx context.Context, hash common.Hash) (*chain.TxReceipt, error)
}

// Session reports the connected account.
type Session interface {
	Account() (common.Address, bool)
}

// StepError is returned when a step fails. Later steps were not attempted.
type StepError struct {
	Index  int
	Method string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Method, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Phase of a step reported to a progress hook.
type Phase int

const (
	PhaseSubmitting Phase = iota
	PhaseSubmitted
	PhaseConfirmed
)

// Progress is reported to the hook set with WithProgress.
type Progress struct {
	Index int
	Total int
	Step  Step
	Phase Phase
	Hash  common.Hash
}

// Orchestrator runs actions against a Gateway on behalf of a Session.
type Orchestrator struct {
	gateway      Gateway
	session      Session
	pending      *PendingAction
	confirmFinal bool
	progress     func(Progress)
	log          *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithConfirmFinal makes a run also wait for the last step's receipt before
// reporting success.
func WithConfirmFinal(v bool) Option {
	return func(o *Orchestrator) { o.confirmFinal = v }
}

// WithPendingAction shares p with other orchestrators so that their actions
// form one group.
func WithPendingAction(p *PendingAction) Option {
	return func(o *Orchestrator) { o.pending = p }
}

// WithProgress registers a hook called from the running goroutine as each
// step is submitted and confirmed.
func WithProgress(fn func(Progress)) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

// New creates an Orchestrator with its own idle PendingAction.
func New(gateway Gateway, session Session, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway: gateway,
		session: session,
		pending: &PendingAction{},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Pending returns the PendingAction guarding this orchestrator.
func (o *Orchestrator) Pending() *PendingAction {
	return o.pending
}

// RunAction submits steps in order.
//
// When waitForIntermediate is true every step except the last waits for its
// receipt before the next one is submitted. When false the next step is
// submitted as soon as the previous one is accepted by the node.
//
// The first failing step stops the run; its message, truncated to
// MaxErrorLen, becomes the PendingAction's LastError and a *StepError is
// returned. onSuccess is called exactly once after a successful run and never
// after a failed one. Nothing is retried or rolled back.
func (o *Orchestrator) RunAction(ctx context.Context, steps []Step, waitForIntermediate bool, onSuccess func()) (err error) {
	if len(steps) == 0 {
		return ErrNoSteps
	}
	account, connected := o.session.Account()
	if !connected {
		return ErrNotConnected
	}
	if !o.pending.begin() {
		return ErrBusy
	}

	steps = slices.Clone(steps)
	log := o.log.With(
		zap.String("run", uuid.NewString()),
		zap.Stringer("account", account),
		zap.Int("steps", len(steps)),
		zap.Bool("wait_intermediate", waitForIntermediate),
	)

	defer func() {
		if r := recover(); r != nil {
			o.pending.end(fmt.Sprint(r))
			panic(r)
		}
		if err != nil {
			msg := err.Error()
			var se *StepError
			if errors.As(err, &se) {
				msg = se.Err.Error()
			}
			o.pending.end(msg)
			log.Warn("action failed", zap.Error(err))
			return
		}
		o.pending.end("")
		log.Info("action succeeded")
		if onSuccess != nil {
			onSuccess()
		}
	}()

	for i, st := range steps {
		last := i == len(steps)-1
		stepLog := log.With(zap.Int("step", i+1), zap.String("method", st.Method), zap.Stringer("to", st.Contract))

		o.report(Progress{Index: i, Total: len(steps), Step: st, Phase: PhaseSubmitting})
		hash, err := o.gateway.Submit(ctx, st.Contract, st.ABI, st.Method, st.Args...)
		if err != nil {
			return &StepError{Index: i, Method: st.Method, Err: err}
		}
		stepLog.Info("step submitted", zap.Stringer("tx", hash))
		o.report(Progress{Index: i, Total: len(steps), Step: st, Phase: PhaseSubmitted, Hash: hash})

		if (last && !o.confirmFinal) || (!last && !waitForIntermediate) {
			continue
		}
		if _, err := o.gateway.WaitForConfirmation(ctx, hash); err != nil {
			return &StepError{Index: i, Method: st.Method, Err: err}
		}
		stepLog.Info("step confirmed", zap.Stringer("tx", hash))
		o.report(Progress{Index: i, Total: len(steps), Step: st, Phase: PhaseConfirmed, Hash: hash})
	}
	return nil
}

func (o *Orchestrator) report(p Progress) {
	if o.progress != nil {
		o.progress(p)
	}
}
