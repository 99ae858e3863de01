// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/templeops/templeadmin/internal/fieldcodec"
)

// =============================================================================
// CATALOGUE
// =============================================================================

// Record is one decoded resource row.
type Record map[string]any

// FieldKind says how a form field is entered and sent.
type FieldKind int

const (
	FieldText FieldKind = iota
	// FieldSecret is masked while typing.
	FieldSecret
	// FieldFile holds a local path uploaded as a multipart file part.
	FieldFile
)

// Field is one input of an add or edit form. Dotted names ("title.en")
// are sent as nested JSON objects.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	// Choices restricts the value when set.
	Choices []string
}

// Column is one column of a list table.
type Column struct {
	Key   string
	Title string
	Width int
	// Mask renders a fixed placeholder instead of the value.
	Mask bool
}

// Resource describes one collection exposed by the admin service.
type Resource struct {
	Name  string
	Title string
	// Path is the collection root used for create, get, update and delete.
	Path string
	// ListPath overrides Path for listing.
	ListPath string
	// TogglePath is a format with one %s for the record id. Empty means the
	// resource has no active flag.
	TogglePath string
	Profile    fieldcodec.Profile
	Columns    []Column
	// Fields is empty for read-only resources.
	Fields []Field
	// Multipart sends create and update as multipart/form-data.
	Multipart bool
	// Deletable allows Delete from the list view.
	Deletable bool
}

// ReadOnly reports whether the resource has no form.
func (r *Resource) ReadOnly() bool {
	return len(r.Fields) == 0
}

// Toggleable reports whether records carry an active flag the service can
// flip.
func (r *Resource) Toggleable() bool {
	return r.TogglePath != ""
}

func (r *Resource) listPath() string {
	if r.ListPath != "" {
		return r.ListPath
	}
	return r.Path
}

var ticketCounterProfile = fieldcodec.Profile{Fields: []string{"password"}}

// Built-in resources.
var (
	Bookings = &Resource{
		Name:    "bookings",
		Title:   "Bookings",
		Path:    "/booking",
		Profile: fieldcodec.BookingProfile,
		Columns: []Column{
			{Key: "id", Title: "ID", Width: 8},
			{Key: "name", Title: "Name", Width: 22},
			{Key: "status", Title: "Status", Width: 12},
			{Key: "type", Title: "Type", Width: 12},
			{Key: "amount", Title: "Amount", Width: 10},
			{Key: "bookingDate", Title: "Booking Date", Width: 14},
		},
	}

	Donations = &Resource{
		Name:    "donations",
		Title:   "Donations",
		Path:    "/booking/donations",
		Profile: fieldcodec.DonationProfile,
		Columns: []Column{
			{Key: "id", Title: "ID", Width: 8},
			{Key: "amount", Title: "Amount", Width: 12},
			{Key: "paymentMethod", Title: "Payment Method", Width: 16},
			{Key: "transactionStatus", Title: "Status", Width: 12},
			{Key: "createdAt", Title: "Date", Width: 20},
		},
	}

	Users = &Resource{
		Name:      "users",
		Title:     "Users",
		Path:      "/users",
		Profile:   fieldcodec.UserProfile,
		Deletable: true,
		Columns: []Column{
			{Key: "id", Title: "ID", Width: 8},
			{Key: "name", Title: "Name", Width: 22},
			{Key: "email", Title: "Email", Width: 28},
			{Key: "password", Title: "Password", Width: 12, Mask: true},
		},
		Fields: []Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "email", Label: "Email", Required: true},
			{Name: "password", Label: "Password", Kind: FieldSecret, Required: true},
		},
	}

	Media = &Resource{
		Name:      "media",
		Title:     "Media",
		Path:      "/media",
		Multipart: true,
		Deletable: true,
		Columns: []Column{
			{Key: "id", Title: "ID", Width: 8},
			{Key: "type", Title: "Type", Width: 10},
			{Key: "category", Title: "Category", Width: 18},
			{Key: "mediaUrl", Title: "Media", Width: 32},
		},
		Fields: []Field{
			{Name: "type", Label: "Type", Required: true, Choices: []string{"image", "video"}},
			{Name: "category", Label: "Category", Required: true},
			{Name: "mediaUrl", Label: "File", Kind: FieldFile},
		},
	}

	Banners = &Resource{
		Name:       "banners",
		Title:      "Banners",
		Path:       "/banner",
		ListPath:   "/banner/admin",
		TogglePath: "/banner/toggle/%s/",
		Multipart:  true,
		Deletable:  true,
		Columns: []Column{
			{Key: "id", Title: "ID", Width: 8},
			{Key: "mediaUrl", Title: "Banner Image", Width: 32},
			{Key: "date", Title: "Date", Width: 20},
			{Key: "isActive", Title: "Status", Width: 10},
		},
		Fields: []Field{
			{Name: "mediaUrl", Label: "Image file", Kind: FieldFile, Required: true},
		},
	}

	Notifications = &Resource{
		Name:      "notifications",
		Title:     "Notifications",
		Path:      "/notifications",
		Deletable: true,
		Columns: []Column{
			{Key: "id", Title: "ID", Width: 8},
			{Key: "title", Title: "Title", Width: 24},
			{Key: "message", Title: "Message", Width: 40},
		},
		Fields: []Field{
			{Name: "title.en", Label: "Title (English)", Required: true},
			{Name: "title.kn", Label: "Title (Kannada)"},
			{Name: "message.en", Label: "Message (English)", Required: true},
			{Name: "message.kn", Label: "Message (Kannada)"},
		},
	}

	TicketCounters = &Resource{
		Name:       "ticket-counters",
		Title:      "Ticket Counter",
		Path:       "/ticketcounter",
		TogglePath: "/ticketcounter/toggle/%s",
		Profile:    ticketCounterProfile,
		Deletable:  true,
		Columns: []Column{
			{Key: "id", Title: "ID", Width: 6},
			{Key: "name", Title: "Name", Width: 20},
			{Key: "email", Title: "Email", Width: 28},
			{Key: "password", Title: "Password", Width: 12, Mask: true},
			{Key: "status", Title: "Status", Width: 10},
		},
		Fields: []Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "email", Label: "Email", Required: true},
			{Name: "password", Label: "Password", Kind: FieldSecret, Required: true},
			{Name: "status", Label: "Status", Required: true, Choices: []string{"enabled", "disabled"}},
		},
	}

	Facilities = &Resource{
		Name:       "facilities",
		Title:      "Facilities",
		Path:       "/facilities",
		ListPath:   "/facilities/admin",
		TogglePath: "/facilities/toggle/%s",
		Multipart:  true,
		Deletable:  true,
		Columns: []Column{
			{Key: "id", Title: "ID", Width: 6},
			{Key: "category_en", Title: "Category", Width: 16},
			{Key: "title_en", Title: "Title", Width: 22},
			{Key: "imgUrl", Title: "Image", Width: 20},
			{Key: "createdAt", Title: "Date", Width: 20},
			{Key: "isActive", Title: "Status", Width: 8},
		},
		Fields: []Field{
			{Name: "category_en", Label: "Category (English)", Required: true},
			{Name: "category_kn", Label: "Category (Kannada)"},
			{Name: "title_en", Label: "Title (English)", Required: true},
			{Name: "title_kn", Label: "Title (Kannada)"},
			{Name: "coordinates", Label: "Coordinates"},
			{Name: "imgUrl", Label: "Image file", Kind: FieldFile},
			{Name: "queueAnimation", Label: "Queue animation file", Kind: FieldFile},
			{Name: "queueVideo", Label: "Queue video file", Kind: FieldFile},
		},
	}

	QueueRoutes = &Resource{
		Name:      "queue-routes",
		Title:     "Queue Routes",
		Path:      "/queueroute",
		Multipart: true,
		Deletable: true,
		Columns: []Column{
			{Key: "id", Title: "ID", Width: 6},
			{Key: "title_en", Title: "Title", Width: 24},
			{Key: "imgUrl", Title: "Image", Width: 22},
			{Key: "queueAnimation", Title: "Queue Animation", Width: 22},
			{Key: "queueVideo", Title: "Queue Video", Width: 22},
		},
		Fields: []Field{
			{Name: "title_en", Label: "Title (English)", Required: true},
			{Name: "title_kn", Label: "Title (Kannada)"},
			{Name: "coordinates", Label: "Coordinates"},
			{Name: "imgUrl", Label: "Image file", Kind: FieldFile},
			{Name: "queueAnimation", Label: "Queue animation file", Kind: FieldFile},
			{Name: "queueVideo", Label: "Queue video file", Kind: FieldFile},
		},
	}
)

// Catalogue lists every built-in resource.
var Catalogue = []*Resource{
	Bookings, Donations, Users, Media, Banners, Notifications, TicketCounters, Facilities, QueueRoutes,
}

// LookupResource finds a resource by name.
func LookupResource(name string) (*Resource, bool) {
	for _, r := range Catalogue {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// =============================================================================
// BOOKING FILTERS
// =============================================================================

// bookingFilters maps a route filter to the lower-cased booking type.
var bookingFilters = map[string]string{
	"300-ticket":  "300 ticket",
	"1000-ticket": "1000 ticket",
}

// FilterBookings keeps bookings whose type matches filterType. An empty or
// unknown filter returns the input unchanged.
func FilterBookings(records []Record, filterType string) []Record {
	want, ok := bookingFilters[filterType]
	if !ok {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if t, isStr := r["type"].(string); isStr && strings.ToLower(t) == want {
			out = append(out, r)
		}
	}
	return out
}

// BookingFilters returns the known filter names in sorted order.
func BookingFilters() []string {
	names := make([]string, 0, len(bookingFilters))
	for k := range bookingFilters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// RECORD HELPERS
// =============================================================================

// ID returns the record identifier, preferring "id" over "_id".
func (r Record) ID() string {
	for _, k := range []string{"id", "_id"} {
		if s := scalar(r[k]); s != "" {
			return s
		}
	}
	return ""
}

// Cell renders a record value for a table cell. Localized objects render
// their English text.
func (r Record) Cell(key string) string {
	return scalar(r[key])
}

// Active reports the record's active flag from isActive (1/0/bool) or
// status ("enabled").
func (r Record) Active() bool {
	switch v := r["isActive"].(type) {
	case bool:
		return v
	case float64:
		return v == 1
	case string:
		return v == "1" || strings.EqualFold(v, "true")
	}
	if s, ok := r["status"].(string); ok {
		return strings.EqualFold(s, "enabled") || strings.EqualFold(s, "active")
	}
	return false
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		if en, ok := t["en"]; ok {
			return scalar(en)
		}
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// FormValue reads a possibly dotted field name out of a record, for
// prefilling edit forms.
func (r Record) FormValue(name string) string {
	parts := strings.Split(name, ".")
	var cur any = map[string]any(r)
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[p]
	}
	if _, isObj := cur.(map[string]any); isObj {
		return ""
	}
	return scalar(cur)
}

// nest turns dotted keys into nested objects.
func nest(values map[string]string) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		parts := strings.Split(k, ".")
		m := out
		for _, p := range parts[:len(parts)-1] {
			child, ok := m[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				m[p] = child
			}
			m = child
		}
		m[parts[len(parts)-1]] = v
	}
	return out
}

// =============================================================================
// OPERATIONS
// =============================================================================

func (c *Client) decode(env *Envelope, r *Resource) ([]Record, error) {
	maps, ok := c.codec.DecodeRecords(env.Data, r.Profile)
	if !ok {
		return nil, &APIError{Type: ErrTypeInvalidResponse, Message: "unreadable " + r.Name + " payload"}
	}
	out := make([]Record, len(maps))
	for i, m := range maps {
		out[i] = Record(m)
	}
	return out, nil
}

// List fetches every record of r.
func (c *Client) List(ctx context.Context, r *Resource) ([]Record, error) {
	env, err := c.doJSON(ctx, http.MethodGet, r.listPath(), nil)
	if err != nil {
		return nil, err
	}
	return c.decode(env, r)
}

// Get fetches one record by id.
func (c *Client) Get(ctx context.Context, r *Resource, id string) (Record, error) {
	id, err := escapeID(id)
	if err != nil {
		return nil, &APIError{Type: ErrTypeNotFound, Message: err.Error()}
	}
	env, err := c.doJSON(ctx, http.MethodGet, r.Path+"/"+id, nil)
	if err != nil {
		return nil, err
	}
	recs, err := c.decode(env, r)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, &APIError{Type: ErrTypeNotFound, Message: r.Title + " " + id + " not found"}
	}
	return recs[0], nil
}

// Create adds a record from form values. Multipart resources upload
// FieldFile values as files.
func (c *Client) Create(ctx context.Context, r *Resource, values map[string]string) (string, error) {
	return c.write(ctx, http.MethodPost, r.Path, r, values)
}

// Update replaces the record id with form values.
func (c *Client) Update(ctx context.Context, r *Resource, id string, values map[string]string) (string, error) {
	id, err := escapeID(id)
	if err != nil {
		return "", &APIError{Type: ErrTypeNotFound, Message: err.Error()}
	}
	return c.write(ctx, http.MethodPut, r.Path+"/"+id, r, values)
}

func (c *Client) write(ctx context.Context, method, path string, r *Resource, values map[string]string) (string, error) {
	var (
		env *Envelope
		err error
	)
	if r.Multipart {
		fields := map[string]string{}
		files := map[string]string{}
		for _, f := range r.Fields {
			v, ok := values[f.Name]
			if !ok {
				continue
			}
			if f.Kind == FieldFile {
				if v != "" {
					files[f.Name] = v
				}
				continue
			}
			fields[f.Name] = v
		}
		env, err = c.Upload(ctx, method, path, fields, files)
	} else {
		env, err = c.doJSON(ctx, method, path, nest(values))
	}
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// Delete removes the record id.
func (c *Client) Delete(ctx context.Context, r *Resource, id string) error {
	id, err := escapeID(id)
	if err != nil {
		return &APIError{Type: ErrTypeNotFound, Message: err.Error()}
	}
	_, err = c.doJSON(ctx, http.MethodDelete, r.Path+"/"+id, nil)
	return err
}

// Toggle flips the active flag of record id.
func (c *Client) Toggle(ctx context.Context, r *Resource, id string) error {
	if !r.Toggleable() {
		return &APIError{Type: ErrTypeRejected, Message: r.Title + " cannot be toggled"}
	}
	id, err := escapeID(id)
	if err != nil {
		return &APIError{Type: ErrTypeNotFound, Message: err.Error()}
	}
	_, err = c.doJSON(ctx, http.MethodPut, fmt.Sprintf(r.TogglePath, id), struct{}{})
	return err
}

// Upload sends a multipart/form-data request. files maps a part name to a
// local file path.
func (c *Client) Upload(ctx context.Context, method, path string, fields, files map[string]string) (*Envelope, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, &APIError{Type: ErrTypeInvalidResponse, Message: "failed to encode form", Cause: err}
		}
	}

	keys = keys[:0]
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := attach(w, k, files[k]); err != nil {
			return nil, &APIError{Type: ErrTypeRejected, Message: "cannot attach " + k, Cause: err}
		}
	}
	if err := w.Close(); err != nil {
		return nil, &APIError{Type: ErrTypeInvalidResponse, Message: "failed to encode form", Cause: err}
	}

	return c.do(ctx, method, path, &buf, w.FormDataContentType())
}

func attach(w *multipart.Writer, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	part, err := w.CreateFormFile(name, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}
