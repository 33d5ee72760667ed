package gui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/fmuoria/resume-matcher/internal/client"
	"github.com/fmuoria/resume-matcher/internal/config"
	"github.com/fmuoria/resume-matcher/internal/controller"
	"github.com/fmuoria/resume-matcher/internal/export"
	"github.com/fmuoria/resume-matcher/internal/ingestion"
	"github.com/fmuoria/resume-matcher/internal/models"
	"github.com/fmuoria/resume-matcher/internal/results"
)

// App represents the main GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	config     *config.Config
	controller *controller.Controller
	renderer   *results.Renderer
	resumes    *resumeList

	// UI Components
	jobDescText    *widget.Entry
	resumeList     *widget.List
	subjectEntry   *widget.Entry
	fetchGmailBtn  *widget.Button
	evaluateBtn    *widget.Button
	cancelBtn      *widget.Button
	loading        *widget.ProgressBarInfinite
	statusLabel    *widget.Label
	topNSelect     *widget.Select
	resultsTable   *widget.Table
	resultsSection *fyne.Container

	rows []results.Row
}

// NewApp creates a new GUI application
func NewApp(cfg *config.Config) *App {
	a := app.New()
	w := a.NewWindow("Resume Matcher")
	w.Resize(fyne.NewSize(1100, 750))

	guiApp := &App{
		fyneApp:    a,
		mainWindow: w,
		config:     cfg,
		renderer:   results.NewRenderer(cfg.TopN()),
		resumes:    &resumeList{},
	}

	timeout, err := cfg.RequestTimeout()
	if err != nil {
		log.Printf("Ignoring timeout setting: %v", err)
	}
	guiApp.controller = controller.New(
		client.New(cfg.Endpoint, client.WithTimeout(timeout)),
		guiApp,
		guiApp.renderer,
	)

	guiApp.setupUI()

	guiApp.renderer.Subscribe(func(rows []results.Row) {
		fyne.Do(func() {
			guiApp.rows = rows
			guiApp.resultsTable.Refresh()
		})
	})

	return guiApp
}

// Run starts the GUI application
func (a *App) Run() {
	a.mainWindow.ShowAndRun()
}

// SetLoading shows or hides the loading indicator
func (a *App) SetLoading(visible bool) {
	fyne.Do(func() {
		if visible {
			a.loading.Show()
			a.loading.Start()
			a.statusLabel.SetText("Evaluating resumes...")
			a.cancelBtn.Enable()
			return
		}
		a.loading.Stop()
		a.loading.Hide()
		a.statusLabel.SetText("Ready")
		a.cancelBtn.Disable()
	})
}

// SetResultsVisible shows or hides the results section
func (a *App) SetResultsVisible(visible bool) {
	fyne.Do(func() {
		if visible {
			a.resultsSection.Show()
			return
		}
		a.resultsSection.Hide()
	})
}

// Alert shows a blocking message
func (a *App) Alert(message string) {
	fyne.Do(func() {
		dialog.ShowInformation("Resume Matcher", message, a.mainWindow)
	})
}

// setupUI initializes all UI components
func (a *App) setupUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("Match Resumes", a.createMatchTab()),
		container.NewTabItem("Settings", a.createSettingsTab()),
	)

	a.mainWindow.SetContent(tabs)
}

// createMatchTab creates the main tab
func (a *App) createMatchTab() fyne.CanvasObject {
	a.jobDescText = widget.NewMultiLineEntry()
	a.jobDescText.SetPlaceHolder("Paste the job requirements...")
	a.jobDescText.SetMinRowsVisible(6)

	jobSection := container.NewVBox(
		widget.NewLabel("Job Description"),
		a.jobDescText,
	)

	// Resume selection
	a.resumeList = widget.NewList(
		func() int { return a.resumes.Len() },
		func() fyne.CanvasObject { return widget.NewLabel("resume.pdf") },
		func(id widget.ListItemID, item fyne.CanvasObject) {
			item.(*widget.Label).SetText(a.resumes.Names()[id])
		},
	)
	addBtn := widget.NewButton("Add Resume...", a.handleAddResume)
	clearBtn := widget.NewButton("Clear", func() {
		a.resumes.Clear()
		a.resumeList.Refresh()
	})

	a.subjectEntry = widget.NewEntry()
	a.subjectEntry.SetPlaceHolder("Email subject, e.g. Backend Engineer Application")
	a.fetchGmailBtn = widget.NewButton("Fetch from Gmail", a.handleFetchGmail)

	resumeSection := container.NewVBox(
		widget.NewLabel("Resumes"),
		container.NewHBox(addBtn, clearBtn),
		container.NewBorder(nil, nil, nil, a.fetchGmailBtn, a.subjectEntry),
		container.NewGridWrap(fyne.NewSize(500, 120), a.resumeList),
	)

	// Submission
	a.evaluateBtn = widget.NewButton("Match Resumes", a.handleEvaluate)
	a.cancelBtn = widget.NewButton("Cancel", a.controller.Cancel)
	a.cancelBtn.Disable()
	a.loading = widget.NewProgressBarInfinite()
	a.loading.Stop()
	a.loading.Hide()
	a.statusLabel = widget.NewLabel("Ready")

	submitSection := container.NewVBox(
		container.NewHBox(a.evaluateBtn, a.cancelBtn, a.statusLabel),
		a.loading,
	)

	// Results
	a.resultsTable = widget.NewTable(
		func() (int, int) {
			return len(a.rows) + 1, len(results.Columns) // +1 for header
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Template")
		},
		func(id widget.TableCellID, cell fyne.CanvasObject) {
			label := cell.(*widget.Label)
			if id.Row == 0 {
				label.SetText(results.Columns[id.Col])
				label.TextStyle = fyne.TextStyle{Bold: true}
				label.Importance = widget.MediumImportance
				label.Refresh()
				return
			}
			if id.Row-1 >= len(a.rows) {
				label.SetText("")
				return
			}
			row := a.rows[id.Row-1]
			label.TextStyle = fyne.TextStyle{}
			label.Importance = widget.MediumImportance
			if id.Col == len(results.Columns)-1 {
				label.Importance = importanceFor(row.StyleTag)
			}
			label.SetText(row.Cells()[id.Col])
		},
	)
	for col, width := range []float32{60, 220, 100, 260, 140, 160} {
		a.resultsTable.SetColumnWidth(col, width)
	}

	a.topNSelect = widget.NewSelect(topNOptions(a.renderer.Filter().String()), func(label string) {
		f, err := results.ParseFilter(label)
		if err != nil {
			return
		}
		a.renderer.SetFilter(f)
	})
	a.topNSelect.SetSelected(a.renderer.Filter().String())

	exportCSVBtn := widget.NewButton("Export CSV", a.handleExportCSV)
	exportExcelBtn := widget.NewButton("Export to Excel", a.handleExportExcel)

	a.resultsSection = container.NewBorder(
		container.NewHBox(widget.NewLabel("Show top"), a.topNSelect, exportCSVBtn, exportExcelBtn),
		nil, nil, nil,
		container.NewGridWrap(fyne.NewSize(1060, 360), a.resultsTable),
	)
	a.resultsSection.Hide()

	return container.NewVScroll(
		container.NewVBox(
			jobSection,
			widget.NewSeparator(),
			resumeSection,
			widget.NewSeparator(),
			submitSection,
			widget.NewSeparator(),
			a.resultsSection,
		),
	)
}

// createSettingsTab creates the settings tab
func (a *App) createSettingsTab() fyne.CanvasObject {
	endpointEntry := widget.NewEntry()
	endpointEntry.SetText(a.config.Endpoint)

	timeoutEntry := widget.NewEntry()
	timeoutEntry.SetPlaceHolder("e.g. 2m, empty for none")
	timeoutEntry.SetText(a.config.Timeout)

	topNSelect := widget.NewSelect(topNOptions(a.config.TopN().String()), nil)
	topNSelect.SetSelected(a.config.TopN().String())

	gmailCredsEntry := widget.NewEntry()
	gmailCredsEntry.SetText(a.config.GmailCredentialsPath)

	gmailCredsBtn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err == nil && uc != nil {
				gmailCredsEntry.SetText(uc.URI().Path())
				uc.Close()
			}
		}, a.mainWindow)
	})

	form := widget.NewForm(
		widget.NewFormItem("Service Endpoint", endpointEntry),
		widget.NewFormItem("Request Timeout", timeoutEntry),
		widget.NewFormItem("Default Top N", topNSelect),
		widget.NewFormItem("Gmail Credentials", container.NewBorder(nil, nil, nil, gmailCredsBtn, gmailCredsEntry)),
	)

	saveBtn := widget.NewButton("Save Settings", func() {
		updated := *a.config
		updated.Endpoint = strings.TrimSpace(endpointEntry.Text)
		updated.Timeout = strings.TrimSpace(timeoutEntry.Text)
		updated.DefaultTopN = topNSelect.Selected
		updated.GmailCredentialsPath = gmailCredsEntry.Text

		if err := updated.Validate(); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}

		path, err := updated.Save()
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		*a.config = updated

		dialog.ShowInformation("Success", "Settings saved to "+path+"\nRestart to use the new endpoint.", a.mainWindow)
	})

	return container.NewVBox(form, saveBtn)
}

// handleAddResume opens a file picker for one resume
func (a *App) handleAddResume() {
	fd := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		path := uc.URI().Path()
		uc.Close()

		loaded, err := ingestion.CollectResumes([]string{path})
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if len(loaded) == 0 {
			dialog.ShowError(fmt.Errorf("%s is not a PDF or DOCX file", filepath.Base(path)), a.mainWindow)
			return
		}
		a.resumes.Add(loaded...)
		a.resumeList.Refresh()
	}, a.mainWindow)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".pdf", ".docx"}))
	fd.Show()
}

// handleFetchGmail downloads resumes attached to matching emails
func (a *App) handleFetchGmail() {
	subject := strings.TrimSpace(a.subjectEntry.Text)
	if subject == "" {
		dialog.ShowError(errors.New("please enter an email subject filter"), a.mainWindow)
		return
	}
	if a.config.GmailCredentialsPath == "" {
		dialog.ShowError(errors.New("gmail credentials not configured. Set them in Settings"), a.mainWindow)
		return
	}

	tokenPath, err := a.config.GmailTokenFile()
	if err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}

	a.fetchGmailBtn.Disable()
	a.statusLabel.SetText("Fetching resumes from Gmail... check the console if authorization is needed.")

	go func() {
		ctx := context.Background()
		loaded, err := a.fetchGmail(ctx, subject, tokenPath)

		// All UI updates must be done on the main thread using fyne.Do
		fyne.Do(func() {
			a.fetchGmailBtn.Enable()
			a.statusLabel.SetText("Ready")
			if err != nil {
				dialog.ShowError(fmt.Errorf("gmail fetch failed: %w", err), a.mainWindow)
				return
			}
			a.resumes.Add(loaded...)
			a.resumeList.Refresh()
			dialog.ShowInformation("Gmail", fmt.Sprintf("Added %d resumes", len(loaded)), a.mainWindow)
		})
	}()
}

func (a *App) fetchGmail(ctx context.Context, subject, tokenPath string) ([]models.ResumeFile, error) {
	gh, err := ingestion.NewGmailHandler(ctx, ingestion.GmailAuth{
		CredentialsPath: a.config.GmailCredentialsPath,
		TokenPath:       tokenPath,
		Prompt:          os.Stdout,
		Input:           os.Stdin,
	}, ingestion.NewFileHandler(a.config.UploadsDir))
	if err != nil {
		return nil, err
	}
	return gh.FetchResumes(ctx, subject)
}

// handleEvaluate submits the form in the background
func (a *App) handleEvaluate() {
	form := controller.Form{
		JobDescription: a.jobDescText.Text,
		Resumes:        a.resumes.Files(),
	}

	go func() {
		err := a.controller.Submit(context.Background(), form)
		if err != nil && !errors.Is(err, controller.ErrStale) {
			log.Printf("Evaluation ended with error: %v", err)
		}
	}()
}

// handleExportCSV writes every result to resume_matches.csv in a chosen folder
func (a *App) handleExportCSV() {
	records := a.renderer.Records()
	if len(records) == 0 {
		dialog.ShowError(errors.New("no results to export"), a.mainWindow)
		return
	}

	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if dir == nil {
			return // User canceled
		}

		path, err := export.ExportCSV(records, dir.Path())
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to export: %w", err), a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Results exported to "+path, a.mainWindow)
	}, a.mainWindow)
}

// handleExportExcel writes every result to an .xlsx workbook
func (a *App) handleExportExcel() {
	records := a.renderer.Records()
	if len(records) == 0 {
		dialog.ShowError(errors.New("no results to export"), a.mainWindow)
		return
	}

	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		outputPath := uc.URI().Path()
		uc.Close()

		if err := export.ExportToExcel(records, outputPath); err != nil {
			dialog.ShowError(fmt.Errorf("failed to export: %w", err), a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Results exported successfully to "+filepath.Base(outputPath), a.mainWindow)
	}, a.mainWindow)
	fd.SetFileName(export.DefaultExcelFilename())
	fd.Show()
}
