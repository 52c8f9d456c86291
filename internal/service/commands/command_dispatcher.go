package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const (
	defaultFinanceTop = 10
	maxListed         = 20
)

// Ledger is the subset of the ledger service the chat bot drives.
type Ledger interface {
	CreateAnimal(ctx context.Context, userID int64, in models.NewAnimal) (models.Animal, error)
	DeleteAnimal(ctx context.Context, userID, id int64) error
	ListAnimals(ctx context.Context, userID int64, status models.AnimalStatus) ([]models.Animal, error)
	CreateFeed(ctx context.Context, userID int64, in models.NewFeed) (models.Feed, error)
	DeleteFeed(ctx context.Context, userID, id int64) error
	CreateVaccination(ctx context.Context, userID int64, in models.NewVaccination) (models.Vaccination, error)
	DeleteVaccination(ctx context.Context, userID, id int64) error
	CreateSale(ctx context.Context, userID int64, in models.NewSale) (models.Sale, error)
	DeleteSale(ctx context.Context, userID, id int64) error
	ListButchers(ctx context.Context, search string) ([]models.Butcher, error)
}

// Reporting is the subset of the reporting service the chat bot reads.
type Reporting interface {
	Snapshot(ctx context.Context, userID int64) (models.Dashboard, error)
	ListFinance(ctx context.Context, userID int64, filter reporting.FinanceFilter) ([]models.FinanceRecord, error)
}

// Confirmations holds destructive actions waiting for the user's /confirm.
type Confirmations interface {
	Pending(userID int64) (models.PendingAction, bool)
	SetPending(userID int64, action models.PendingAction)
	ClearPending(userID int64)
}

// Dispatcher executes parsed chat commands on behalf of a user.
type Dispatcher interface {
	HandleCommand(ctx context.Context, userID int64, cmd models.Command) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	ledger    Ledger
	reporting Reporting
	pending   Confirmations
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(ledger Ledger, reporting Reporting, pending Confirmations, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:    ledger,
		reporting: reporting,
		pending:   pending,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleCommand runs cmd and returns the reply text. Argument errors wrap
// ErrInvalidArguments; domain errors are returned as they come from the services.
func (s *Service) HandleCommand(ctx context.Context, userID int64, cmd models.Command) (string, error) {
	today := models.NewDate(s.now())

	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.Int64("user_id", userID), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandHelp:
		return HelpText, nil
	case models.CommandDashboard:
		return s.dashboard(ctx, userID)
	case models.CommandAnimals:
		return s.animals(ctx, userID, cmd)
	case models.CommandButchers:
		return s.butchers(ctx, cmd)
	case models.CommandFinance:
		return s.finance(ctx, userID, cmd)
	case models.CommandBuy:
		in, err := buildAnimal(cmd, today)
		if err != nil {
			return "", err
		}
		animal, err := s.ledger.CreateAnimal(ctx, userID, in)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Animal #%d (%s) recorded, bought for %s on %s.",
			animal.ID, label(animal.Type, animal.Breed), models.FormatMoney(animal.PurchasePrice), animal.PurchaseDate), nil
	case models.CommandFeed:
		in, err := buildFeed(cmd, today)
		if err != nil {
			return "", err
		}
		feed, err := s.ledger.CreateFeed(ctx, userID, in)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Feed #%d recorded: %s kg of %s, total %s.",
			feed.ID, feed.Quantity.String(), feed.Name, models.FormatMoney(feed.TotalCost)), nil
	case models.CommandVaccinate:
		in, err := buildVaccination(cmd, today)
		if err != nil {
			return "", err
		}
		vac, err := s.ledger.CreateVaccination(ctx, userID, in)
		if err != nil {
			return "", err
		}
		msg := fmt.Sprintf("Vaccination #%d recorded: %s for animal #%d.", vac.ID, vac.VaccineName, vac.AnimalID)
		if vac.HasCost() {
			msg += fmt.Sprintf(" Cost %s.", models.FormatMoney(*vac.Cost))
		}
		return msg, nil
	case models.CommandSell:
		in, err := buildSale(cmd, today)
		if err != nil {
			return "", err
		}
		sale, err := s.ledger.CreateSale(ctx, userID, in)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Sale #%d recorded: animal #%d sold for %s, profit %s.",
			sale.ID, sale.AnimalID, models.FormatMoney(sale.SalePrice), models.FormatMoney(sale.Profit)), nil
	case models.CommandDelete:
		action, err := buildDelete(cmd)
		if err != nil {
			return "", err
		}
		s.pending.SetPending(userID, action)
		return fmt.Sprintf("Delete %s #%d and its ledger entries? Reply /confirm or /cancel.", action.Entity, action.ID), nil
	case models.CommandConfirm:
		return s.confirm(ctx, userID)
	case models.CommandCancel:
		if _, ok := s.pending.Pending(userID); !ok {
			return "Nothing to cancel.", nil
		}
		s.pending.ClearPending(userID)
		return "Cancelled.", nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) dashboard(ctx context.Context, userID int64) (string, error) {
	dash, err := s.reporting.Snapshot(ctx, userID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("*Dashboard*\n")
	fmt.Fprintf(&b, "Animals: %d total, %d active, %d sold, %d deceased\n",
		dash.Animals.Total, dash.Animals.Active, dash.Animals.Sold, dash.Animals.Deceased)
	fmt.Fprintf(&b, "Income: %s\nExpense: %s\nProfit: %s",
		models.FormatMoney(dash.Finance.Income), models.FormatMoney(dash.Finance.Expense), models.FormatMoney(dash.Finance.Profit))
	if len(dash.AnimalsByType) > 0 {
		b.WriteString("\n\nActive by type:")
		for _, tc := range dash.AnimalsByType {
			fmt.Fprintf(&b, "\n- %s: %d", tc.Type, tc.Count)
		}
	}
	return b.String(), nil
}

func (s *Service) animals(ctx context.Context, userID int64, cmd models.Command) (string, error) {
	status := models.AnimalActive
	if len(cmd.Args) > 0 {
		status = models.AnimalStatus(strings.ToLower(cmd.Args[0]))
		if status == "all" {
			status = ""
		}
	}
	animals, err := s.ledger.ListAnimals(ctx, userID, status)
	if err != nil {
		return "", err
	}
	if len(animals) == 0 {
		return "No animals found.", nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d animal(s):", len(animals))
	for i, a := range animals {
		if i == maxListed {
			fmt.Fprintf(&b, "\n... and %d more", len(animals)-maxListed)
			break
		}
		fmt.Fprintf(&b, "\n#%d %s, %s, bought %s", a.ID, label(a.Type, a.Breed), a.Status, models.FormatMoney(a.PurchasePrice))
	}
	return b.String(), nil
}

func (s *Service) butchers(ctx context.Context, cmd models.Command) (string, error) {
	butchers, err := s.ledger.ListButchers(ctx, strings.Join(cmd.Args, " "))
	if err != nil {
		return "", err
	}
	if len(butchers) == 0 {
		return "No butchers found.", nil
	}
	var b strings.Builder
	for i, bu := range butchers {
		if i == maxListed {
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "#%d %s, %s", bu.ID, bu.Name, bu.Phone)
		if bu.Address != "" {
			fmt.Fprintf(&b, ", %s", bu.Address)
		}
	}
	return b.String(), nil
}

func (s *Service) finance(ctx context.Context, userID int64, cmd models.Command) (string, error) {
	limit := defaultFinanceTop
	if len(cmd.Args) > 0 {
		n, err := strconv.Atoi(cmd.Args[0])
		if err != nil || n <= 0 {
			return "", fmt.Errorf("%w: /finance takes a positive count", ErrInvalidArguments)
		}
		limit = min(n, maxListed)
	}
	records, err := s.reporting.ListFinance(ctx, userID, reporting.FinanceFilter{Limit: limit})
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "No ledger entries yet.", nil
	}
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		sign := "+"
		if r.Kind == models.FinanceExpense {
			sign = "-"
		}
		fmt.Fprintf(&b, "%s %s%s %s", r.Date, sign, models.FormatMoney(r.Amount), r.Description)
	}
	return b.String(), nil
}

func (s *Service) confirm(ctx context.Context, userID int64) (string, error) {
	action, ok := s.pending.Pending(userID)
	if !ok {
		return "Nothing to confirm.", nil
	}
	s.pending.ClearPending(userID)

	var err error
	switch action.Entity {
	case "animal":
		err = s.ledger.DeleteAnimal(ctx, userID, action.ID)
	case "sale":
		err = s.ledger.DeleteSale(ctx, userID, action.ID)
	case "feed":
		err = s.ledger.DeleteFeed(ctx, userID, action.ID)
	case "vaccination":
		err = s.ledger.DeleteVaccination(ctx, userID, action.ID)
	default:
		return "", ErrUnsupportedCommand
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted %s #%d.", action.Entity, action.ID), nil
}

func label(kind, breed string) string {
	if breed == "" {
		return kind
	}
	return kind + " - " + breed
}
