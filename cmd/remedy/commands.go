package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/remedy/internal/config"
	"github.com/kalambet/remedy/internal/matching"
	"github.com/kalambet/remedy/internal/pipeline"
	"github.com/kalambet/remedy/internal/storage"
)

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Describe symptoms to the running server",
	Long: `Describe symptoms to the running server.

With a message, runs a single turn. Without one, starts an interactive
session where earlier messages are sent as conversation history.

Examples:
  remedy chat "I've had a bad cough for 2 days"
  remedy chat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		send := func(message string, history []string) error {
			resp, err := client.post(cmd.Context(), "/aichat", map[string]any{
				"message":             message,
				"conversationHistory": history,
			})
			if err != nil {
				return err
			}
			var turn pipeline.Turn
			if err := decodeEnvelope(resp, &turn); err != nil {
				return err
			}
			return printTurn(cmd.OutOrStdout(), turn, asJSON)
		}

		if len(args) > 0 {
			return send(strings.Join(args, " "), nil)
		}
		return chatLoop(cmd.InOrStdin(), cmd.ErrOrStderr(), send)
	},
}

// chatLoop reads one message per line until EOF or "exit". Each sent
// message is added to the history of the following turns.
func chatLoop(in io.Reader, prompt io.Writer, send func(string, []string) error) error {
	var history []string
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(prompt, colorize(colorBold, "> "))
		if !scanner.Scan() {
			fmt.Fprintln(prompt)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if err := send(line, history); err != nil {
			return err
		}
		history = append(history, "user: "+line)
	}
}

func printTurn(w io.Writer, turn pipeline.Turn, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(turn)
	}
	renderTurn(w, turn)
	return nil
}

func init() {
	chatCmd.Flags().Bool("json", false, "print the raw turn as JSON")
}

// --- analyze ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze <message>",
	Short: "Run one turn locally without a server",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		history, _ := cmd.Flags().GetStringArray("history")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		orch, _, err := pipeline.New(cfg)
		if err != nil {
			return err
		}

		turn, err := orch.HandleTurn(cmd.Context(), strings.Join(args, " "), history)
		if err != nil {
			return err
		}
		if !asJSON {
			printStep("extracted by %s", turn.Source)
		}
		return printTurn(cmd.OutOrStdout(), turn, asJSON)
	},
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "print the raw turn as JSON")
	analyzeCmd.Flags().StringArray("history", nil, `earlier turn, e.g. "user: I feel tired" (repeatable)`)
}

// --- symptoms ---

var symptomsCmd = &cobra.Command{
	Use:   "symptoms",
	Short: "Manage the symptom catalog",
}

var symptomsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all symptoms",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/symptoms/getAll")
		if err != nil {
			return err
		}
		var symptoms []storage.Symptom
		if err := decodeEnvelope(resp, &symptoms); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(symptoms) == 0 {
			fmt.Fprintln(out, "No symptoms found.")
			return nil
		}
		for _, s := range symptoms {
			fmt.Fprintf(out, "%s  %s  %s\n",
				colorize(colorCyan, fmt.Sprintf("%4d", s.ID)),
				s.Name,
				truncate(s.Description, 60),
			)
		}
		return nil
	},
}

var symptomsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single symptom",
	Long: `Show a single symptom.

With --severity, lists the linked interventions suited to that severity
instead of the raw record.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		severity, _ := cmd.Flags().GetString("severity")
		if severity == "" {
			return showRecord(cmd, "/symptoms/getById/", args[0])
		}
		if !storage.ValidSeverity(severity) {
			return invalidSeverity(severity)
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/symptoms/getById/%d", id))
		if err != nil {
			return err
		}
		var s storage.Symptom
		if err := decodeEnvelope(resp, &s); err != nil {
			return err
		}
		resp, err = client.get(cmd.Context(), "/interventions/getAll")
		if err != nil {
			return err
		}
		var all []storage.Intervention
		if err := decodeEnvelope(resp, &all); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", colorize(colorCyan, s.Name), severity)
		if s.Description != "" {
			fmt.Fprintf(out, "  %s\n", s.Description)
		}
		renderInterventions(out, matching.Linked(s, all), severity)
		return nil
	},
}

var symptomsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a symptom",
	RunE: func(cmd *cobra.Command, args []string) error {
		var s storage.Symptom
		applySymptomFlags(cmd, &s)
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("--name is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/symptoms/create", s)
		if err != nil {
			return err
		}
		var created storage.Symptom
		if err := decodeEnvelope(resp, &created); err != nil {
			return err
		}
		printSuccess("Created symptom %d (%s)", created.ID, created.Name)
		return nil
	},
}

var symptomsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a symptom",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/symptoms/getById/%d", id))
		if err != nil {
			return err
		}
		var s storage.Symptom
		if err := decodeEnvelope(resp, &s); err != nil {
			return err
		}
		applySymptomFlags(cmd, &s)

		resp, err = client.put(cmd.Context(), fmt.Sprintf("/symptoms/update/%d", id), s)
		if err != nil {
			return err
		}
		if err := decodeEnvelope(resp, &s); err != nil {
			return err
		}
		printSuccess("Updated symptom %d (%s)", s.ID, s.Name)
		return nil
	},
}

var symptomsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a symptom",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return deleteRecord(cmd, "/symptoms/delete/", args[0])
	},
}

// applySymptomFlags copies only the flags the user set onto s.
func applySymptomFlags(cmd *cobra.Command, s *storage.Symptom) {
	f := cmd.Flags()
	if f.Changed("name") {
		s.Name, _ = f.GetString("name")
	}
	if f.Changed("description") {
		s.Description, _ = f.GetString("description")
	}
	if f.Changed("interventions") {
		s.Interventions, _ = f.GetIntSlice("interventions")
	}
}

func init() {
	symptomsShowCmd.Flags().String("severity", "", "list linked interventions for mild, moderate or severe")
	for _, c := range []*cobra.Command{symptomsAddCmd, symptomsUpdateCmd} {
		c.Flags().String("name", "", "symptom name")
		c.Flags().String("description", "", "free-text description")
		c.Flags().IntSlice("interventions", nil, "comma-separated intervention ids")
	}
	symptomsCmd.AddCommand(symptomsListCmd, symptomsShowCmd, symptomsAddCmd, symptomsUpdateCmd, symptomsDeleteCmd)
}

// --- interventions ---

var interventionsCmd = &cobra.Command{
	Use:   "interventions",
	Short: "Manage the intervention catalog",
}

var interventionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all interventions",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/interventions/getAll")
		if err != nil {
			return err
		}
		var interventions []storage.Intervention
		if err := decodeEnvelope(resp, &interventions); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(interventions) == 0 {
			fmt.Fprintln(out, "No interventions found.")
			return nil
		}
		for _, iv := range interventions {
			fmt.Fprintf(out, "%s  %s  %s\n",
				colorize(colorCyan, fmt.Sprintf("%4d", iv.ID)),
				interventionLine(iv),
				colorize(colorGreen, fmt.Sprintf("+%d/-%d", iv.Likes, iv.Dislikes)),
			)
		}
		return nil
	},
}

var interventionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single intervention",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRecord(cmd, "/interventions/getById/", args[0])
	},
}

var interventionsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an intervention",
	RunE: func(cmd *cobra.Command, args []string) error {
		var iv storage.Intervention
		applyInterventionFlags(cmd, &iv)
		if strings.TrimSpace(iv.Name) == "" {
			return fmt.Errorf("--name is required")
		}
		if err := checkSeverities(iv.Severity); err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/interventions/create", iv)
		if err != nil {
			return err
		}
		var created storage.Intervention
		if err := decodeEnvelope(resp, &created); err != nil {
			return err
		}
		printSuccess("Created intervention %d (%s)", created.ID, created.Name)
		return nil
	},
}

var interventionsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of an intervention",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/interventions/getById/%d", id))
		if err != nil {
			return err
		}
		var iv storage.Intervention
		if err := decodeEnvelope(resp, &iv); err != nil {
			return err
		}
		applyInterventionFlags(cmd, &iv)
		if err := checkSeverities(iv.Severity); err != nil {
			return err
		}

		resp, err = client.put(cmd.Context(), fmt.Sprintf("/interventions/update/%d", id), iv)
		if err != nil {
			return err
		}
		if err := decodeEnvelope(resp, &iv); err != nil {
			return err
		}
		printSuccess("Updated intervention %d (%s)", iv.ID, iv.Name)
		return nil
	},
}

var interventionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an intervention",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return deleteRecord(cmd, "/interventions/delete/", args[0])
	},
}

// applyInterventionFlags copies only the flags the user set onto iv.
// --sos=false clears the urgent flag.
func applyInterventionFlags(cmd *cobra.Command, iv *storage.Intervention) {
	f := cmd.Flags()
	if f.Changed("name") {
		iv.Name, _ = f.GetString("name")
	}
	if f.Changed("description") {
		iv.Description, _ = f.GetString("description")
	}
	if f.Changed("severity") {
		iv.Severity, _ = f.GetStringSlice("severity")
	}
	if f.Changed("link") {
		iv.ProductLink, _ = f.GetString("link")
	}
	if f.Changed("image") {
		iv.ProductImage, _ = f.GetString("image")
	}
	if f.Changed("sos") {
		if sos, _ := f.GetBool("sos"); sos {
			iv.SOS = &sos
		} else {
			iv.SOS = nil
		}
	}
}

func checkSeverities(severities []string) error {
	for _, s := range severities {
		if !storage.ValidSeverity(s) {
			return invalidSeverity(s)
		}
	}
	return nil
}

func invalidSeverity(s string) error {
	return fmt.Errorf("invalid severity %q (want mild, moderate or severe)", s)
}

func init() {
	for _, c := range []*cobra.Command{interventionsAddCmd, interventionsUpdateCmd} {
		f := c.Flags()
		f.String("name", "", "intervention name")
		f.String("description", "", "free-text description")
		f.StringSlice("severity", nil, "severities it suits: mild, moderate, severe")
		f.String("link", "", "product link")
		f.String("image", "", "product image URL")
		f.Bool("sos", false, "mark as urgent")
	}
	interventionsCmd.AddCommand(interventionsListCmd, interventionsShowCmd, interventionsAddCmd, interventionsUpdateCmd, interventionsDeleteCmd)
}

// --- shared record helpers ---

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func showRecord(cmd *cobra.Command, prefix, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	client, err := newAPIClient()
	if err != nil {
		return err
	}
	resp, err := client.get(cmd.Context(), prefix+strconv.Itoa(id))
	if err != nil {
		return err
	}
	var record any
	if err := decodeEnvelope(resp, &record); err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(record)
}

func deleteRecord(cmd *cobra.Command, prefix, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	client, err := newAPIClient()
	if err != nil {
		return err
	}
	resp, err := client.delete(cmd.Context(), prefix+strconv.Itoa(id))
	if err != nil {
		return err
	}
	var deleted struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := decodeEnvelope(resp, &deleted); err != nil {
		return err
	}
	printSuccess("Deleted %d (%s)", deleted.ID, deleted.Name)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(out, "  %s = %s  (%s)\n", colorize(colorBold, k.Key), k.Value, k.Source)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		shadow, err := config.SetKey(key, value)
		if err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		if shadow != "" {
			printWarning("%s is also set in the %s and takes precedence", key, shadow)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
