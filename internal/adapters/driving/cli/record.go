package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

var (
	recordFields      []string
	recordLocale      string
	recordPublish     bool
	recordPublishAt   string
	recordAttachments []int64
	recordState       string
	recordLimit       int
	recordOffset      int
	recordJSON        bool
)

// now is replaceable in tests.
var now = func() time.Time { return time.Now().UTC() }

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage records",
	Long:  `Create, update, publish and delete records. Published records are kept in the search index.`,
}

var recordGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordGet,
}

var recordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records",
	Args:  cobra.NoArgs,
	RunE:  runRecordList,
}

var recordCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a record",
	Long: `Creates a record from --set Field=Value pairs.
  docsync record create --set SF_Number=SF042 --set Client_Name=Acme --publish`,
	Args: cobra.NoArgs,
	RunE: runRecordCreate,
}

var recordUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update record fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordUpdate,
}

var recordPublishCmd = &cobra.Command{
	Use:   "publish [id]",
	Short: "Publish a record",
	Long:  `Publishes a record now, or at the instant given with --at.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordPublish,
}

var recordUnpublishCmd = &cobra.Command{
	Use:   "unpublish [id]",
	Short: "Return a record to draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordUnpublish,
}

var recordDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordDelete,
}

var recordAutoPopulateCmd = &cobra.Command{
	Use:   "auto-populate [id]",
	Short: "Fill a record from the enrichment API",
	Long: `Fetches the record's data from the enrichment API by its SF_Number and
applies it as an update marked as a manual override.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordAutoPopulate,
}

func init() {
	for _, c := range []*cobra.Command{recordCreateCmd, recordUpdateCmd} {
		c.Flags().StringArrayVarP(&recordFields, "set", "s", nil, "field as Field=Value (repeatable)")
		c.Flags().StringVar(&recordLocale, "locale", "", "content locale")
		c.Flags().Int64SliceVar(&recordAttachments, "attachments", nil, "attachment ids")
	}
	recordCreateCmd.Flags().BoolVar(&recordPublish, "publish", false, "publish on create")
	recordPublishCmd.Flags().StringVar(&recordPublishAt, "at", "", "publish instant (ISO 8601)")

	recordListCmd.Flags().StringVar(&recordState, "state", "preview", "preview (all) or live (published only)")
	recordListCmd.Flags().IntVarP(&recordLimit, "limit", "n", 25, "maximum number of records")
	recordListCmd.Flags().IntVar(&recordOffset, "offset", 0, "number of records to skip")

	recordCmd.PersistentFlags().BoolVar(&recordJSON, "json", false, "output as JSON")

	recordCmd.AddCommand(recordGetCmd)
	recordCmd.AddCommand(recordListCmd)
	recordCmd.AddCommand(recordCreateCmd)
	recordCmd.AddCommand(recordUpdateCmd)
	recordCmd.AddCommand(recordPublishCmd)
	recordCmd.AddCommand(recordUnpublishCmd)
	recordCmd.AddCommand(recordDeleteCmd)
	recordCmd.AddCommand(recordAutoPopulateCmd)
	rootCmd.AddCommand(recordCmd)
}

func requireRecords() error {
	if recordService == nil {
		return errors.New("record service not configured")
	}
	return nil
}

func parseRecordID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid record id %q", raw)
	}
	return id, nil
}

func runRecordGet(cmd *cobra.Command, args []string) error {
	if err := requireRecords(); err != nil {
		return err
	}
	id, err := parseRecordID(args[0])
	if err != nil {
		return err
	}

	rec, err := recordService.Get(commandContext(cmd), id)
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}
	if recordJSON {
		return printJSON(cmd, rec)
	}
	printRecord(cmd, rec)
	return nil
}

func runRecordList(cmd *cobra.Command, _ []string) error {
	if err := requireRecords(); err != nil {
		return err
	}

	records, total, err := recordService.List(commandContext(cmd), domain.RecordFilter{
		PublicationState: domain.PublicationState(recordState),
		Limit:            recordLimit,
		Offset:           recordOffset,
	})
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	if recordJSON {
		return printJSON(cmd, records)
	}

	if len(records) == 0 {
		cmd.Println("No records found.")
		return nil
	}
	for i := range records {
		cmd.Printf("  %-6d %-8s %-30s %s\n", records[i].ID, records[i].SFNumber,
			records[i].ClientName, publicationLabel(&records[i]))
	}
	cmd.Printf("\nShowing %d of %d records\n", len(records), total)
	return nil
}

func runRecordCreate(cmd *cobra.Command, _ []string) error {
	if err := requireRecords(); err != nil {
		return err
	}

	patch, err := patchFromFlags(cmd)
	if err != nil {
		return err
	}
	if recordPublish {
		patch.Publish = domain.PublishDirective{Action: domain.PublishSet, At: now()}
	}

	rec := &domain.Record{}
	if err := patch.Apply(rec); err != nil {
		return err
	}
	if patch.AttachmentIDs != nil {
		for _, id := range *patch.AttachmentIDs {
			rec.Attachments = append(rec.Attachments, domain.Attachment{ID: id})
		}
	}

	created, err := recordService.Create(commandContext(cmd), rec)
	if err != nil {
		if created != nil && errors.Is(err, domain.ErrIndexSync) {
			cmd.Printf("Created record %d, but the index was not updated: %v\n", created.ID, err)
			return nil
		}
		return fmt.Errorf("failed to create record: %w", err)
	}
	if recordJSON {
		return printJSON(cmd, created)
	}
	cmd.Printf("Created record %d (%s)\n", created.ID, publicationLabel(created))
	return nil
}

func runRecordUpdate(cmd *cobra.Command, args []string) error {
	patch, err := patchFromFlags(cmd)
	if err != nil {
		return err
	}
	return applyUpdate(cmd, args[0], patch)
}

func runRecordPublish(cmd *cobra.Command, args []string) error {
	var raw any = true
	if recordPublishAt != "" {
		raw = recordPublishAt
	}
	directive, err := domain.ParsePublishDirective(true, raw, now())
	if err != nil {
		return err
	}
	return applyUpdate(cmd, args[0], domain.RecordPatch{Publish: directive})
}

func runRecordUnpublish(cmd *cobra.Command, args []string) error {
	return applyUpdate(cmd, args[0], domain.RecordPatch{
		Publish: domain.PublishDirective{Action: domain.PublishClear},
	})
}

func applyUpdate(cmd *cobra.Command, rawID string, patch domain.RecordPatch) error {
	if err := requireRecords(); err != nil {
		return err
	}
	id, err := parseRecordID(rawID)
	if err != nil {
		return err
	}

	result, err := recordService.Update(commandContext(cmd), id, patch)
	return reportUpdate(cmd, id, result, err)
}

func runRecordAutoPopulate(cmd *cobra.Command, args []string) error {
	if err := requireRecords(); err != nil {
		return err
	}
	id, err := parseRecordID(args[0])
	if err != nil {
		return err
	}

	result, err := recordService.AutoPopulate(commandContext(cmd), id)
	return reportUpdate(cmd, id, result, err)
}

func reportUpdate(cmd *cobra.Command, id int64, result *domain.UpdateResult, err error) error {
	if err != nil {
		if result != nil && errors.Is(err, domain.ErrIndexSync) {
			cmd.Printf("Record %d %s, but the index was not updated: %v\n", id, result.Operation, err)
			return nil
		}
		return fmt.Errorf("failed to update record %d: %w", id, err)
	}
	if recordJSON {
		return printJSON(cmd, result)
	}

	cmd.Printf("Record %d %s (%s)\n", id, result.Operation, publicationLabel(result.Record))
	for _, w := range result.Warnings {
		cmd.Printf("  Warning: %s\n", w)
	}
	return nil
}

func runRecordDelete(cmd *cobra.Command, args []string) error {
	if err := requireRecords(); err != nil {
		return err
	}
	id, err := parseRecordID(args[0])
	if err != nil {
		return err
	}

	if err := recordService.Delete(commandContext(cmd), id); err != nil {
		if errors.Is(err, domain.ErrIndexSync) {
			cmd.Printf("Deleted record %d, but the index was not updated: %v\n", id, err)
			return nil
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}
	cmd.Printf("Deleted record %d\n", id)
	return nil
}

// patchFromFlags collects --set, --locale and --attachments into a patch.
func patchFromFlags(cmd *cobra.Command) (domain.RecordPatch, error) {
	patch := domain.RecordPatch{Fields: make(map[string]string)}
	for _, pair := range recordFields {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return patch, fmt.Errorf("invalid --set %q: expected Field=Value", pair)
		}
		if !domain.IsBusinessField(key) {
			return patch, fmt.Errorf("unknown field %q", key)
		}
		patch.Fields[key] = value
	}
	if cmd.Flags().Changed("locale") {
		locale := recordLocale
		patch.Locale = &locale
	}
	if cmd.Flags().Changed("attachments") {
		ids := append([]int64{}, recordAttachments...)
		patch.AttachmentIDs = &ids
	}
	return patch, nil
}

func publicationLabel(rec *domain.Record) string {
	if rec != nil && rec.IsPublished() {
		return "published " + rec.PublishedAt.UTC().Format(time.RFC3339)
	}
	return "draft"
}

func printRecord(cmd *cobra.Command, rec *domain.Record) {
	cmd.Printf("Record %d\n", rec.ID)
	cmd.Printf("  Document ID: %s\n", rec.DocumentID)
	cmd.Printf("  State:       %s\n", publicationLabel(rec))
	if rec.ManualOverride {
		cmd.Println("  Manual override: yes")
	}
	cmd.Println()
	fields := rec.Fields()
	for _, name := range domain.BusinessFieldNames() {
		if v := fields[name]; v != "" {
			cmd.Printf("  %-30s %s\n", name, v)
		}
	}
	if len(rec.Attachments) > 0 {
		cmd.Println()
		cmd.Println("  Attachments:")
		for _, a := range rec.Attachments {
			cmd.Printf("    [%d] %s %s\n", a.ID, a.Name, a.URL)
		}
	}
}
