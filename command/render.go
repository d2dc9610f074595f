package command

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"gator/domain/schedule"
)

// Created renders the outcome of a creation. Deliveries flushed by the
// creation always follow the creation lines.
func Created(res schedule.Created, err error) []string {
	var lines []string
	switch {
	case errors.Is(err, schedule.ErrDuplicateOrder):
		lines = append(lines, fmt.Sprintf("Cannot create. Order %d already exists.", res.ID))
	case err != nil:
		lines = append(lines, fmt.Sprintf("Cannot create. Order %d: %v", res.ID, err))
	default:
		lines = append(lines, fmt.Sprintf("Order %d has been created - ETA: %d", res.ID, res.ETA))
		if len(res.Updated) > 0 {
			lines = append(lines, updatedETAs(res.Updated))
		}
	}
	return append(lines, Delivered(res.Delivered)...)
}

func Canceled(res schedule.Canceled, err error) []string {
	switch {
	case errors.Is(err, schedule.ErrUnknownOrder):
		return []string{fmt.Sprintf("Cannot cancel. Order %d does not exist.", res.ID)}
	case errors.Is(err, schedule.ErrAlreadyDelivered), errors.Is(err, schedule.ErrOutForDelivery):
		return []string{fmt.Sprintf("Cannot cancel. Order %d has already been delivered or is out for delivery.", res.ID)}
	case err != nil:
		return []string{fmt.Sprintf("Cannot cancel. Order %d: %v", res.ID, err)}
	}
	return []string{
		fmt.Sprintf("Order %d has been canceled", res.ID),
		updatedETAs(res.Updated),
	}
}

func Rescheduled(res schedule.Rescheduled, err error) []string {
	switch {
	case errors.Is(err, schedule.ErrUnknownOrder):
		return []string{fmt.Sprintf("Cannot update. Order %d does not exist.", res.ID)}
	case errors.Is(err, schedule.ErrAlreadyDelivered):
		return []string{fmt.Sprintf("Cannot update. Order %d has already been delivered.", res.ID)}
	case err != nil:
		return []string{fmt.Sprintf("Cannot update. Order %d: %v", res.ID, err)}
	}
	return []string{updatedETAs(res.Updated)}
}

func Range(ids []int64) []string {
	if len(ids) == 0 {
		return []string{"There are no orders in that time period."}
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return []string{"Orders to be delivered: [" + strings.Join(parts, ", ") + "]"}
}

func Order(id int64, o schedule.Order, err error) []string {
	if err != nil {
		return []string{notFound(id)}
	}
	return []string{fmt.Sprintf("[%d, %d, %d, %d, %d]", o.ID, o.CreatedAt, o.Value, o.Duration, o.ETA)}
}

func Rank(id int64, rank int, err error) []string {
	if err != nil {
		return []string{notFound(id)}
	}
	return []string{fmt.Sprintf("Order %d will be delivered after %d orders.", id, rank)}
}

func Delivered(ds []schedule.Delivery) []string {
	lines := make([]string, 0, len(ds))
	for _, d := range ds {
		lines = append(lines, fmt.Sprintf("Order %d has been delivered at time %d", d.ID, d.ETA))
	}
	return lines
}

func updatedETAs(us []schedule.ETAUpdate) string {
	parts := make([]string, len(us))
	for i, u := range us {
		parts[i] = fmt.Sprintf("[%d: %d]", u.ID, u.ETA)
	}
	return "Updated ETAs: " + strings.Join(parts, ", ")
}

func notFound(id int64) string {
	return fmt.Sprintf("Order %d does not exist.", id)
}
