package config

import (
	"context"
	"fmt"

	"github.com/Tiliavir/monthly-invoicer/internal/apperr"
)

// Property keys of the business configuration.
const (
	KeyWorkLogFileID          = "WORK_LOG_FILE_ID"
	KeyWorkLogSheetName       = "WORK_LOG_SHEET_NAME"
	KeyInvoiceTemplateID      = "INVOICE_TEMPLATE_ID"
	KeyInvoiceWorkFolderID    = "INVOICE_WORK_FOLDER_ID"
	KeyInvoiceOutputFolderID  = "INVOICE_OUTPUT_FOLDER_ID"
	KeyArchiveFolderID        = "ARCHIVE_FOLDER_ID"
	KeyPayeeName              = "PAYEE_NAME"
	KeyNotificationEmail      = "NOTIFICATION_EMAIL"
	KeyInvoiceSheetName       = "INVOICE_SHEET_NAME"
	KeyInvoiceOutputSheetName = "INVOICE_OUTPUT_SHEET_NAME"
	KeyCellInvoiceDate        = "CELL_INVOICE_DATE"
	KeyCellInvoiceNumber      = "CELL_INVOICE_NUMBER"
	KeyCellWorkHours          = "CELL_WORK_HOURS"
	KeyCellTotalAmount        = "CELL_TOTAL_AMOUNT"
	KeyWorkHoursSuffix        = "WORK_HOURS_SUFFIX"
)

// Property is one documented key with its built-in default.
type Property struct {
	Key         string
	Default     string
	Required    bool
	Description string
}

// Catalog lists every property in seeding order.
var Catalog = []Property{
	{KeyWorkLogFileID, "", true, "Spreadsheet ID of the work log"},
	{KeyWorkLogSheetName, "作業記録", false, "Sheet holding the work-log rows"},
	{KeyInvoiceTemplateID, "", true, "Spreadsheet ID of the invoice template"},
	{KeyInvoiceWorkFolderID, "", false, "Folder for the working copy (empty = output folder)"},
	{KeyInvoiceOutputFolderID, "", true, "Folder (or S3 prefix / local subdirectory) for finished PDFs"},
	{KeyArchiveFolderID, "", true, "Folder the working copy is moved to after export"},
	{KeyPayeeName, "請求者", false, "Payee name used in the PDF file name"},
	{KeyNotificationEmail, "", false, "Notification recipient (empty = no mail)"},
	{KeyInvoiceSheetName, "シート1", false, "Template sheet the values are written to"},
	{KeyInvoiceOutputSheetName, "ダウンロード用", false, "Template sheet exported as PDF"},
	{KeyCellInvoiceDate, "E4", false, "Cell receiving the invoice date"},
	{KeyCellInvoiceNumber, "E5", false, "Cell receiving the invoice number"},
	{KeyCellWorkHours, "C33", false, "Cell receiving the total hours"},
	{KeyCellTotalAmount, "F30", false, "Formula cell holding the total amount"},
	{KeyWorkHoursSuffix, "", false, "Unit appended to the hours (empty = write a number)"},
}

// PropertyStore is the persisted key/value store.
type PropertyStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Properties is the business configuration of one invocation.
type Properties struct {
	WorkLogFileID          string
	WorkLogSheetName       string
	InvoiceTemplateID      string
	InvoiceWorkFolderID    string
	InvoiceOutputFolderID  string
	ArchiveFolderID        string
	PayeeName              string
	NotificationEmail      string
	InvoiceSheetName       string
	InvoiceOutputSheetName string
	Cells                  Cells
	WorkHoursSuffix        string
}

// Cells are the A1 addresses written to and read from the invoice sheet.
type Cells struct {
	InvoiceDate   string
	InvoiceNumber string
	WorkHours     string
	TotalAmount   string
}

// Lookup returns the default of key.
func Lookup(key string) (Property, bool) {
	for _, p := range Catalog {
		if p.Key == key {
			return p, true
		}
	}
	return Property{}, false
}

// Resolve reads every key once. Unset or empty keys fall back to their default.
func Resolve(ctx context.Context, store PropertyStore) (Properties, error) {
	values := make(map[string]string, len(Catalog))
	for _, p := range Catalog {
		v, ok, err := store.Get(ctx, p.Key)
		if err != nil {
			return Properties{}, fmt.Errorf("resolving %s: %w", p.Key, err)
		}
		if !ok || v == "" {
			v = p.Default
		}
		values[p.Key] = v
	}
	return fromValues(func(p Property) string { return values[p.Key] }), nil
}

func fromValues(get func(Property) string) Properties {
	v := make(map[string]string, len(Catalog))
	for _, p := range Catalog {
		v[p.Key] = get(p)
	}
	return Properties{
		WorkLogFileID:          v[KeyWorkLogFileID],
		WorkLogSheetName:       v[KeyWorkLogSheetName],
		InvoiceTemplateID:      v[KeyInvoiceTemplateID],
		InvoiceWorkFolderID:    v[KeyInvoiceWorkFolderID],
		InvoiceOutputFolderID:  v[KeyInvoiceOutputFolderID],
		ArchiveFolderID:        v[KeyArchiveFolderID],
		PayeeName:              v[KeyPayeeName],
		NotificationEmail:      v[KeyNotificationEmail],
		InvoiceSheetName:       v[KeyInvoiceSheetName],
		InvoiceOutputSheetName: v[KeyInvoiceOutputSheetName],
		Cells: Cells{
			InvoiceDate:   v[KeyCellInvoiceDate],
			InvoiceNumber: v[KeyCellInvoiceNumber],
			WorkHours:     v[KeyCellWorkHours],
			TotalAmount:   v[KeyCellTotalAmount],
		},
		WorkHoursSuffix: v[KeyWorkHoursSuffix],
	}
}

// WorkFolder is the folder the template is copied into.
func (p Properties) WorkFolder() string {
	if p.InvoiceWorkFolderID != "" {
		return p.InvoiceWorkFolderID
	}
	return p.InvoiceOutputFolderID
}

// Validate reports the first required key without a value.
func (p Properties) Validate() error {
	required := []struct{ key, value string }{
		{KeyWorkLogFileID, p.WorkLogFileID},
		{KeyWorkLogSheetName, p.WorkLogSheetName},
		{KeyInvoiceTemplateID, p.InvoiceTemplateID},
		{KeyInvoiceOutputFolderID, p.InvoiceOutputFolderID},
		{KeyArchiveFolderID, p.ArchiveFolderID},
		{KeyInvoiceSheetName, p.InvoiceSheetName},
		{KeyInvoiceOutputSheetName, p.InvoiceOutputSheetName},
		{KeyCellInvoiceDate, p.Cells.InvoiceDate},
		{KeyCellInvoiceNumber, p.Cells.InvoiceNumber},
		{KeyCellWorkHours, p.Cells.WorkHours},
		{KeyCellTotalAmount, p.Cells.TotalAmount},
	}
	for _, r := range required {
		if r.value == "" {
			return apperr.Config("validate configuration", r.key, "must be set (invoicer props set "+r.key+" <value>)")
		}
	}
	return nil
}

// InitializeProperties seeds the store with defaults. Without force only
// missing keys are written, so re-running never clobbers edited values; with
// force every key is reset. It returns the keys written.
func InitializeProperties(ctx context.Context, store PropertyStore, force bool) ([]string, error) {
	var written []string
	for _, p := range Catalog {
		if !force {
			_, ok, err := store.Get(ctx, p.Key)
			if err != nil {
				return written, fmt.Errorf("reading %s: %w", p.Key, err)
			}
			if ok {
				continue
			}
		}
		if err := store.Set(ctx, p.Key, p.Default); err != nil {
			return written, fmt.Errorf("seeding %s: %w", p.Key, err)
		}
		written = append(written, p.Key)
	}
	return written, nil
}
