package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// HelpText lists the supported chat commands.
const HelpText = `*Herdbook commands*
/dashboard - herd and money overview
/animals [active|sold|deceased|all] - list animals
/butchers [search] - find a butcher
/finance [count] - latest ledger entries
/buy <type> <price> [breed] - record a purchased animal
/feed <name> <quantity> <unit price> [supplier] - record a feed purchase
/vaccinate <animal id> <vaccine> [cost] - record a vaccination
/sell <animal id> <price> [buyer] - sell an animal
/delete <animal|sale|feed|vaccination> <id> - delete a record, then /confirm or /cancel`

var usage = map[models.CommandType]string{
	models.CommandBuy:       "/buy <type> <price> [breed], e.g. /buy cow 5000000 N'Dama",
	models.CommandFeed:      "/feed <name> <quantity> <unit price> [supplier], e.g. /feed bran 10 1500",
	models.CommandVaccinate: "/vaccinate <animal id> <vaccine> [cost], e.g. /vaccinate 12 anthrax 45000",
	models.CommandSell:      "/sell <animal id> <price> [buyer], e.g. /sell 12 7000000 Mamadou",
	models.CommandDelete:    "/delete <animal|sale|feed|vaccination> <id>, e.g. /delete sale 3",
}

// Usage returns the syntax hint for a command, or the help text when there is none.
func Usage(t models.CommandType) string {
	if u, ok := usage[t]; ok {
		return "Usage: " + u
	}
	return HelpText
}

// ErrorReply turns a command failure into the text sent back to the user. The
// second result is false for failures the user cannot fix, which callers log.
func ErrorReply(t models.CommandType, err error) (string, bool) {
	var (
		verr *models.ValidationError
		nerr *models.NotFoundError
		cerr *models.ConflictError
	)
	switch {
	case errors.Is(err, ErrInvalidArguments):
		return Usage(t), true
	case errors.Is(err, ErrUnsupportedCommand):
		return "Unknown command.\n\n" + HelpText, true
	case errors.As(err, &verr):
		if verr.Field == "" {
			return "Invalid input: " + verr.Message, true
		}
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message), true
	case errors.As(err, &nerr):
		return fmt.Sprintf("No %s with id %d.", nerr.Entity, nerr.ID), true
	case errors.As(err, &cerr):
		return fmt.Sprintf("Cannot change %s #%d: %s.", cerr.Entity, cerr.ID, cerr.Reason), true
	default:
		return "Something went wrong while saving. Please try again later.", false
	}
}

func parseAmount(arg string) (*decimal.Decimal, error) {
	cleaned := strings.NewReplacer(",", "", "_", "").Replace(arg)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidArguments, arg)
	}
	return &d, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not an id", ErrInvalidArguments, arg)
	}
	return id, nil
}

func buildAnimal(cmd models.Command, today models.Date) (models.NewAnimal, error) {
	if len(cmd.Args) < 2 {
		return models.NewAnimal{}, ErrInvalidArguments
	}
	price, err := parseAmount(cmd.Args[1])
	if err != nil {
		return models.NewAnimal{}, err
	}
	return models.NewAnimal{
		Type:          strings.ToLower(cmd.Args[0]),
		Breed:         strings.Join(cmd.Args[2:], " "),
		PurchasePrice: price,
		PurchaseDate:  today,
	}, nil
}

func buildFeed(cmd models.Command, today models.Date) (models.NewFeed, error) {
	if len(cmd.Args) < 3 {
		return models.NewFeed{}, ErrInvalidArguments
	}
	qty, err := parseAmount(cmd.Args[1])
	if err != nil {
		return models.NewFeed{}, err
	}
	unit, err := parseAmount(cmd.Args[2])
	if err != nil {
		return models.NewFeed{}, err
	}
	return models.NewFeed{
		Name:      cmd.Args[0],
		Quantity:  qty,
		UnitPrice: unit,
		Supplier:  strings.Join(cmd.Args[3:], " "),
		FeedDate:  today,
	}, nil
}

func buildVaccination(cmd models.Command, today models.Date) (models.NewVaccination, error) {
	if len(cmd.Args) < 2 {
		return models.NewVaccination{}, ErrInvalidArguments
	}
	animalID, err := parseID(cmd.Args[0])
	if err != nil {
		return models.NewVaccination{}, err
	}
	in := models.NewVaccination{
		AnimalID:        animalID,
		VaccineName:     cmd.Args[1],
		VaccinationDate: today,
	}
	if len(cmd.Args) > 2 {
		if in.Cost, err = parseAmount(cmd.Args[2]); err != nil {
			return models.NewVaccination{}, err
		}
	}
	return in, nil
}

func buildSale(cmd models.Command, today models.Date) (models.NewSale, error) {
	if len(cmd.Args) < 2 {
		return models.NewSale{}, ErrInvalidArguments
	}
	animalID, err := parseID(cmd.Args[0])
	if err != nil {
		return models.NewSale{}, err
	}
	price, err := parseAmount(cmd.Args[1])
	if err != nil {
		return models.NewSale{}, err
	}
	return models.NewSale{
		AnimalID:  animalID,
		SaleDate:  today,
		SalePrice: price,
		BuyerName: strings.Join(cmd.Args[2:], " "),
	}, nil
}

func buildDelete(cmd models.Command) (models.PendingAction, error) {
	if len(cmd.Args) != 2 {
		return models.PendingAction{}, ErrInvalidArguments
	}
	entity := strings.ToLower(cmd.Args[0])
	switch entity {
	case "animal", "sale", "feed", "vaccination":
	default:
		return models.PendingAction{}, fmt.Errorf("%w: cannot delete %q", ErrInvalidArguments, cmd.Args[0])
	}
	id, err := parseID(cmd.Args[1])
	if err != nil {
		return models.PendingAction{}, err
	}
	return models.PendingAction{Entity: entity, ID: id}, nil
}
