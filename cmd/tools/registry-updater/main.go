// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"candidate-evaluation-workers/pkg/registry"
)

const defaultPath = "pkg/registry/activities.json"

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)

	// Add command flags
	addPath := addCmd.String("path", defaultPath, "Path to registry file")
	idAdd := addCmd.String("id", "", "Activity ID (e.g., score-references)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Score References)")
	description := addCmd.String("description", "", "Description")
	category := addCmd.String("category", "evaluation", "Category (evaluation, persistence, dashboard, communication)")
	taskType := addCmd.String("taskType", "", "Camunda Task Type (defaults to the ID)")
	version := addCmd.String("version", "1.0.0", "Version")
	implStatus := addCmd.String("status", "planned", "Implementation Status (planned, in-progress, completed, verified)")

	// Update command flags
	updatePath := updateCmd.String("path", defaultPath, "Path to registry file")
	idUpdate := updateCmd.String("id", "", "Activity ID to update")
	field := updateCmd.String("field", "", "Field to update (status, version, timeout, retries, ...)")
	value := updateCmd.String("value", "", "New value for the field")

	// Read-only commands default to the registry compiled into the workers.
	validatePath := validateCmd.String("path", "", "Path to registry file (default: embedded registry)")
	listPath := listCmd.String("path", "", "Path to registry file (default: embedded registry)")
	showPath := showCmd.String("path", "", "Path to registry file (default: embedded registry)")
	showID := showCmd.String("id", "", "Activity ID or task type")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *description == "" {
			fmt.Println("Error: id, displayName and description are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		if *taskType == "" {
			*taskType = *idAdd
		}
		err = addActivity(*addPath, registry.Activity{
			ID:                   *idAdd,
			DisplayName:          *displayName,
			Description:          *description,
			Category:             *category,
			Version:              *version,
			TaskType:             *taskType,
			ImplementationStatus: *implStatus,
			InputSchema:          map[string]interface{}{"type": "object"},
			OutputSchema:         map[string]interface{}{"type": "object"},
			ErrorCodes:           []string{"PARSE_ERROR", "INPUT_VALIDATION_FAILED"},
			Timeout:              "10s",
			Workflows:            []string{},
			Tags:                 []string{},
		})
		if err == nil {
			fmt.Printf("Added activity: %s\n", *idAdd)
		}

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		err = updateActivity(*updatePath, *idUpdate, *field, *value)
		if err == nil {
			fmt.Printf("Updated activity %s, field %s to %s\n", *idUpdate, *field, *value)
		}

	case "validate":
		validateCmd.Parse(os.Args[2:])
		err = validateRegistry(*validatePath)

	case "list":
		listCmd.Parse(os.Args[2:])
		err = listActivities(*listPath)

	case "show":
		showCmd.Parse(os.Args[2:])
		if *showID == "" {
			fmt.Println("Error: id is required for show.")
			showCmd.Usage()
			os.Exit(1)
		}
		err = showActivity(*showPath, *showID)

	case "help":
		fallthrough
	default:
		help()
		return
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// load reads the registry at path, or the embedded one when path is empty.
func load(path string) (*registry.ActivityRegistry, error) {
	if path == "" {
		return registry.Default()
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return reg, nil
}

func addActivity(path string, activity registry.Activity) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0", Activities: []registry.Activity{}}
	}

	for _, existing := range reg.Activities {
		if existing.ID == activity.ID || existing.TaskType == activity.TaskType {
			return fmt.Errorf("activity with ID %s or task type %s already exists", activity.ID, activity.TaskType)
		}
	}

	reg.Activities = append(reg.Activities, activity)
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return registry.Save(reg, path)
}

func updateActivity(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var activity *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == id {
			activity = &reg.Activities[i]
			break
		}
	}
	if activity == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		activity.ImplementationStatus = value
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "category":
		activity.Category = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		activity.Retries = retries
	case "errorCodes":
		activity.ErrorCodes = splitList(value)
	case "tags":
		activity.Tags = splitList(value)
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return registry.Save(reg, path)
}

func validateRegistry(path string) error {
	reg, err := load(path)
	if err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func listActivities(path string) error {
	reg, err := load(path)
	if err != nil {
		return err
	}

	activities := append([]registry.Activity(nil), reg.Activities...)
	sort.Slice(activities, func(i, j int) bool {
		if activities[i].Category != activities[j].Category {
			return activities[i].Category < activities[j].Category
		}
		return activities[i].TaskType < activities[j].TaskType
	})

	fmt.Printf("%-26s %-14s %-8s %-7s %s\n", "TASK TYPE", "CATEGORY", "TIMEOUT", "RETRIES", "STATUS")
	for _, a := range activities {
		fmt.Printf("%-26s %-14s %-8s %-7d %s\n", a.TaskType, a.Category, a.Timeout, a.Retries, a.ImplementationStatus)
	}
	return nil
}

func showActivity(path, id string) error {
	reg, err := load(path)
	if err != nil {
		return err
	}
	for _, a := range reg.Activities {
		if a.ID == id || a.TaskType == id {
			data, err := json.MarshalIndent(a, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
	}
	return fmt.Errorf("activity %s not found", id)
}

func splitList(value string) []string {
	out := []string{}
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry (embedded, or a file with -path)
  list     List registered task types
  show     Print one activity as JSON
  help     Show this help message

Examples:
  registry-updater add -id score-references -displayName "Score References" -description "Scores reference checks"
  registry-updater update -id save-evaluation -field timeout -value 45s
  registry-updater validate -path pkg/registry/activities.json
  registry-updater show -id toggle-shortlist

Use 'registry-updater <command> -h' for more information about a command.`)
}
