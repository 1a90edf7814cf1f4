package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"

	"github.com/TechyByFin/byfin-dashboard/internal/chain"
	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"github.com/TechyByFin/byfin-dashboard/internal/contract"
	"github.com/TechyByFin/byfin-dashboard/internal/rpc"
	"github.com/TechyByFin/byfin-dashboard/internal/txflow"
	"github.com/TechyByFin/byfin-dashboard/internal/ui"
	"github.com/TechyByFin/byfin-dashboard/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// errReported marks errors whose message was already printed to the user.
	errReported     = errors.New("action failed")
	errMissingInput = errors.New("missing input")
)

// env bundles what a command needs to talk to the ByFin contracts.
type env struct {
	net     chain.Network
	client  *chain.EVMClient
	book    contract.Book
	reader  *contract.Reader
	wallet  *wallet.Wallet // nil when no wallet is configured
	session *wallet.Session
}

// openEnv resolves the address book, RPC client and wallet session. With
// unlock set, a signing wallet's key is loaded so the session is connected.
func openEnv(ctx context.Context, unlock bool) (*env, error) {
	book, err := contract.LoadBook(cfg)
	if err != nil {
		return nil, err
	}
	url, err := rpc.Select(ctx, cfg.Endpoints(), rpc.EVMPing)
	if err != nil {
		return nil, err
	}
	logger.Debug("rpc selected", zap.String("url", url))
	client := chain.NewEVMClient(url)

	w, session, err := resolveSession(unlock)
	if err != nil {
		return nil, err
	}
	return &env{
		net:     chain.FromConfig(cfg),
		client:  client,
		book:    book,
		reader:  contract.NewReader(client, book),
		wallet:  w,
		session: session,
	}, nil
}

// resolveSession picks the --wallet (or default) wallet. A missing wallet or
// a watch-only one yields a disconnected session rather than an error, so
// write actions report "no wallet connected" the same way in both cases.
func resolveSession(unlock bool) (*wallet.Wallet, *wallet.Session, error) {
	mgr := newWalletManager()
	name := walletFlag
	if name == "" {
		name = cfg.DefaultWallet
	}
	w, err := mgr.Resolve(name)
	if errors.Is(err, wallet.ErrNoWallet) {
		return nil, wallet.WatchSession(common.Address{}), nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w\n  Run `byfin wallet list` or add one with `byfin wallet add`", err)
	}
	if !unlock || !w.CanSign() {
		return w, wallet.WatchSession(common.HexToAddress(w.Address)), nil
	}
	warnIfNoSession()
	s, err := wallet.Connect(w, mgr.Keystore(), wallet.DefaultSessionCache())
	if err != nil {
		return nil, nil, err
	}
	return w, s, nil
}

// owner returns the address read-only views are rendered for.
func (e *env) owner() (common.Address, error) {
	if e.wallet == nil {
		return common.Address{}, fmt.Errorf("%w\n  Add one with: byfin wallet add <name> <address>", wallet.ErrNoWallet)
	}
	return common.HexToAddress(e.wallet.Address), nil
}

// gateway returns the Sender for the connected signer, or nil for a
// disconnected session. Gas estimation failures are fatal unless the wait
// mode is legacy. The orchestrator never reaches a nil gateway because
// it checks the session first.
func (e *env) gateway() txflow.Gateway {
	signer := e.session.Signer()
	if signer == nil {
		return nil
	}
	return contract.NewSender(e.client, signer, big.NewInt(e.net.ChainID)).
		WithGasFallback(!cfg.WaitForIntermediate())
}

// actionSpec describes one user-facing write action.
type actionSpec struct {
	title string
	form  *ui.Form
	run   func(ctx context.Context, g *txflow.Group, onSuccess func()) error
}

// runAction previews the form, asks for confirmation and executes the action
// through a fresh Group. Inputs are reset only when the action succeeds. The
// session's signer is dropped when the action returns.
func runAction(cmd *cobra.Command, action actionSpec) error {
	if missing := action.form.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", errMissingInput, strings.Join(missing, ", "))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.session.Disconnect()
	if _, ok := e.session.Account(); ok {
		id, err := e.client.ChainID(ctx)
		if err != nil {
			return fmt.Errorf("checking chain: %w", err)
		}
		if err := e.net.CheckChainID(id); err != nil {
			return err
		}
	}

	pairs := append([][2]string{}, action.form.Pairs()...)
	pairs = append(pairs,
		[2]string{"wallet", walletLabel(e.wallet)},
		[2]string{"network", fmt.Sprintf("%s (%d)", e.net.Name, e.net.ChainID)},
		[2]string{"wait mode", cfg.WaitMode},
	)
	fmt.Println(ui.KeyValueBlock(action.title, pairs))
	if !assumeYes && !ui.Confirm(action.title+"?") {
		fmt.Println(ui.Meta("Cancelled."))
		return nil
	}

	spin := ui.NewSpinner("Preparing " + action.title + "...")
	orch := txflow.New(e.gateway(), e.session,
		txflow.WithLogger(logger.With(zap.String("action", action.title))),
		txflow.WithConfirmFinal(cfg.ConfirmFinal),
		txflow.WithProgress(func(p txflow.Progress) {
			msg, line := progressText(p, e.net, cfg.WaitForIntermediate())
			spin.SetMessage(msg)
			if line != "" {
				spin.Println(line)
			}
		}),
	)
	group := txflow.NewGroup(orch, e.book, cfg.WaitForIntermediate())

	spin.Start()
	err = action.run(ctx, group, action.form.Reset)
	spin.Stop()

	return reportAction(action.title, group.State(), err)
}

// reportAction prints the outcome of an action and decides what cobra sees.
func reportAction(title string, state txflow.State, err error) error {
	var stepErr *txflow.StepError
	switch {
	case err == nil:
		fmt.Println(ui.Success(title + " complete."))
		return nil
	case errors.Is(err, txflow.ErrNotConnected):
		fmt.Println(ui.Warn("No wallet connected."))
		fmt.Println(ui.Hint("Select a signing wallet with --wallet or `byfin wallet use <name>`."))
		return nil
	case errors.Is(err, txflow.ErrBusy):
		fmt.Println(ui.Warn("Another action is still pending."))
		return nil
	case errors.As(err, &stepErr):
		fmt.Println(ui.Err(state.LastError))
		return errReported
	default:
		return err
	}
}

// progressText turns an orchestrator progress event into the spinner message
// and an optional line printed above it.
func progressText(p txflow.Progress, net chain.Network, wait bool) (msg, line string) {
	prefix := fmt.Sprintf("[%d/%d] %s", p.Index+1, p.Total, p.Step.Label)
	switch p.Phase {
	case txflow.PhaseSubmitting:
		return prefix + "...", ""
	case txflow.PhaseSubmitted:
		msg = prefix + " submitted"
		if wait && p.Index < p.Total-1 {
			msg = prefix + " waiting for confirmation..."
		}
		return msg, ui.Success(p.Step.Label+" submitted") + "  " + ui.Link("tx", net.TxURL(p.Hash.Hex()))
	case txflow.PhaseConfirmed:
		return prefix + " confirmed", ui.Success(p.Step.Label + " confirmed")
	}
	return prefix, ""
}

func walletLabel(w *wallet.Wallet) string {
	if w == nil {
		return "none"
	}
	label := w.Name + " " + ui.TruncateAddr(w.Address)
	if !w.CanSign() {
		label += " (watch-only)"
	}
	return label
}

// newWalletManager creates a Manager backed by the config-dir JSON store and
// the OS keychain.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(cfg.Dir())),
	)
}

// warnIfNoSession prints a one-line hint when no session file is active, so
// the user understands why the OS keychain is about to prompt.
func warnIfNoSession() {
	if !wallet.DefaultSessionCache().Active() {
		fmt.Println(ui.Info("No session active, the keychain may prompt for your key."))
		fmt.Println(ui.Hint("Run `byfin wallet unlock` once to skip future prompts."))
	}
}

// readContext returns a context bounded by the RPC timeout for read-only views.
func readContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 4*config.RPCTimeout)
}
