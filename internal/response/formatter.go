// Package response shapes handler results into the API envelope:
// {meta: {status, message}, data}.
package response

import (
	"reflect"

	"github.com/gofiber/fiber/v2"
)

// Meta is the meta block of every successful response.
type Meta struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Envelope is the body of a non-paginated response.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// PaginatedMeta carries the pagination fields alongside status and message.
type PaginatedMeta struct {
	Meta
	Pagination
}

// PaginatedEnvelope is the body of a paginated list response.
type PaginatedEnvelope struct {
	Meta PaginatedMeta `json:"meta"`
	Data any           `json:"data"`
}

// Format builds the envelope for data. A nil data value serializes as null,
// a nil slice as an empty list.
func Format(status int, message string, data any) Envelope {
	return Envelope{
		Meta: Meta{Status: status, Message: message},
		Data: normalizeData(data),
	}
}

// FormatPaginated builds the paginated envelope for one page of items.
func FormatPaginated(status int, message string, items any, page, limit int, total int64) PaginatedEnvelope {
	items = normalizeData(items)
	return PaginatedEnvelope{
		Meta: PaginatedMeta{
			Meta:       Meta{Status: status, Message: message},
			Pagination: NewPagination(page, limit, total, lengthOf(items)),
		},
		Data: items,
	}
}

// Success writes a formatted envelope with the given status.
func Success(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Format(status, message, data))
}

// Paginated writes a 200 paginated envelope.
func Paginated(c *fiber.Ctx, message string, items any, page, limit int, total int64) error {
	return c.Status(fiber.StatusOK).JSON(FormatPaginated(fiber.StatusOK, message, items, page, limit, total))
}

func normalizeData(data any) any {
	if data == nil {
		return nil
	}
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return reflect.MakeSlice(v.Type(), 0, 0).Interface()
		}
	case reflect.Pointer, reflect.Map, reflect.Interface:
		if v.IsNil() {
			return nil
		}
	}
	return data
}

func lengthOf(items any) int {
	if items == nil {
		return 0
	}
	v := reflect.ValueOf(items)
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		return v.Len()
	}
	return 1
}
