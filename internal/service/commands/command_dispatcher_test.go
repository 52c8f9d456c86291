package commands

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository/memory"
	"github.com/mamadbah2/herdbook/internal/service/ledger"
	"github.com/mamadbah2/herdbook/internal/service/reporting"
)

const chatUser int64 = 224622350064

type memoryConfirmations map[int64]models.PendingAction

func (m memoryConfirmations) Pending(userID int64) (models.PendingAction, bool) {
	a, ok := m[userID]
	return a, ok
}

func (m memoryConfirmations) SetPending(userID int64, action models.PendingAction) {
	m[userID] = action
}

func (m memoryConfirmations) ClearPending(userID int64) {
	delete(m, userID)
}

func newDispatcher(t *testing.T) (*Service, *ledger.Service) {
	t.Helper()
	store := memory.NewStore()
	ledgerSvc := ledger.NewService(store, nil)
	svc := NewService(ledgerSvc, reporting.NewService(store, nil), memoryConfirmations{}, nil)
	svc.now = func() time.Time { return time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC) }
	return svc, ledgerSvc
}

func run(t *testing.T, svc *Service, text string) string {
	t.Helper()
	reply, err := svc.HandleCommand(context.Background(), chatUser, models.ParseCommand(text))
	if err != nil {
		t.Fatalf("%s: %v", text, err)
	}
	return reply
}

func TestBuySellAndDashboard(t *testing.T) {
	svc, _ := newDispatcher(t)

	reply := run(t, svc, "/buy Cow 5,000,000 N'Dama")
	if want := "Animal #1 (cow - N'Dama) recorded, bought for 5,000,000 on 2024-06-12."; reply != want {
		t.Fatalf("buy reply = %q, want %q", reply, want)
	}

	reply = run(t, svc, "/sell 1 7000000 Mamadou")
	if !strings.Contains(reply, "profit 2,000,000") {
		t.Fatalf("unexpected sell reply %q", reply)
	}

	reply = run(t, svc, "/dashboard")
	for _, fragment := range []string{"1 sold", "Income: 7,000,000", "Expense: 5,000,000", "Profit: 2,000,000"} {
		if !strings.Contains(reply, fragment) {
			t.Fatalf("dashboard missing %q:\n%s", fragment, reply)
		}
	}

	reply = run(t, svc, "/finance 1")
	if !strings.HasPrefix(reply, "2024-06-12 +7,000,000 Sale:") {
		t.Fatalf("unexpected finance reply %q", reply)
	}
}

func TestFeedAndVaccinate(t *testing.T) {
	svc, _ := newDispatcher(t)
	run(t, svc, "/buy goat 250000")

	reply := run(t, svc, "/feed bran 10 1500 Madina market")
	if want := "Feed #1 recorded: 10 kg of bran, total 15,000."; reply != want {
		t.Fatalf("feed reply = %q, want %q", reply, want)
	}

	reply = run(t, svc, "/vaccinate #1 PPR 45000")
	if !strings.Contains(reply, "Cost 45,000") {
		t.Fatalf("unexpected vaccinate reply %q", reply)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	svc, ledgerSvc := newDispatcher(t)
	ctx := context.Background()
	run(t, svc, "/buy cow 1000")

	reply := run(t, svc, "/delete animal 1")
	if !strings.Contains(reply, "/confirm") {
		t.Fatalf("expected a confirmation prompt, got %q", reply)
	}
	if _, err := ledgerSvc.GetAnimal(ctx, chatUser, 1); err != nil {
		t.Fatalf("animal deleted before confirmation: %v", err)
	}

	if reply := run(t, svc, "/cancel"); reply != "Cancelled." {
		t.Fatalf("unexpected cancel reply %q", reply)
	}
	if reply := run(t, svc, "/confirm"); reply != "Nothing to confirm." {
		t.Fatalf("unexpected confirm reply %q", reply)
	}

	run(t, svc, "/delete animal 1")
	if reply := run(t, svc, "yes"); reply != "Deleted animal #1." {
		t.Fatalf("unexpected confirm reply %q", reply)
	}
	if _, err := ledgerSvc.GetAnimal(ctx, chatUser, 1); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected animal to be gone, got %v", err)
	}
}

func TestArgumentErrors(t *testing.T) {
	svc, _ := newDispatcher(t)

	cases := map[string]models.CommandType{
		"/buy cow":             models.CommandBuy,
		"/buy cow lots":        models.CommandBuy,
		"/sell x 100":          models.CommandSell,
		"/delete butcher 2":    models.CommandDelete,
		"/feed hay 2":          models.CommandFeed,
		"/vaccinate 0 anthrax": models.CommandVaccinate,
		"/finance -3":          models.CommandFinance,
	}
	for text, kind := range cases {
		t.Run(text, func(t *testing.T) {
			cmd := models.ParseCommand(text)
			_, err := svc.HandleCommand(context.Background(), chatUser, cmd)
			if !errors.Is(err, ErrInvalidArguments) {
				t.Fatalf("expected invalid arguments, got %v", err)
			}
			reply, ok := ErrorReply(kind, err)
			if !ok || reply == "" {
				t.Fatalf("expected a user-facing reply, got %q %v", reply, ok)
			}
		})
	}
}

func TestErrorReplies(t *testing.T) {
	svc, _ := newDispatcher(t)

	_, err := svc.HandleCommand(context.Background(), chatUser, models.ParseCommand("/sell 99 100"))
	reply, ok := ErrorReply(models.CommandSell, err)
	if !ok || reply != "No animal with id 99." {
		t.Fatalf("unexpected not-found reply %q", reply)
	}

	run(t, svc, "/buy cow 100")
	run(t, svc, "/sell 1 200")
	_, err = svc.HandleCommand(context.Background(), chatUser, models.ParseCommand("/sell 1 300"))
	reply, ok = ErrorReply(models.CommandSell, err)
	if !ok || !strings.HasPrefix(reply, "Cannot change animal #1") {
		t.Fatalf("unexpected conflict reply %q", reply)
	}

	_, err = svc.HandleCommand(context.Background(), chatUser, models.ParseCommand("hello there"))
	if !errors.Is(err, ErrUnsupportedCommand) {
		t.Fatalf("expected unsupported command, got %v", err)
	}

	reply, ok = ErrorReply(models.CommandBuy, models.NewStorageError("commit", errors.New("disk full")))
	if ok || strings.Contains(reply, "disk full") {
		t.Fatalf("storage failures must stay generic, got %q", reply)
	}
}
