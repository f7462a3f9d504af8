// Package mocks provides testify mocks for the controller's collaborators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/robbyt/go-scriptdesk/diagnostic"
	"github.com/robbyt/go-scriptdesk/tasks"
)

// Compiler is a mock implementation of controller.Compiler.
type Compiler struct {
	mock.Mock
}

// Analyze is a mock implementation of the Analyze method.
func (m *Compiler) Analyze(fileName, text string, caretOffset int) (*diagnostic.Analysis, error) {
	args := m.Called(fileName, text, caretOffset)
	var result *diagnostic.Analysis
	if r := args.Get(0); r != nil {
		result = r.(*diagnostic.Analysis)
	}
	return result, args.Error(1)
}

// Linter is a mock implementation of controller.Linter.
type Linter struct {
	mock.Mock
}

// Lint is a mock implementation of the Lint method.
func (m *Linter) Lint(text, fileName string) ([]diagnostic.Diagnostic, error) {
	args := m.Called(text, fileName)
	var issues []diagnostic.Diagnostic
	if r := args.Get(0); r != nil {
		issues = r.([]diagnostic.Diagnostic)
	}
	return issues, args.Error(1)
}

// Format is a mock implementation of the Format method.
func (m *Linter) Format(text, fileName string) (string, error) {
	args := m.Called(text, fileName)
	return args.String(0), args.Error(1)
}

// Document is a mock implementation of controller.Document.
type Document struct {
	mock.Mock
}

// Name is a mock implementation of the Name method.
func (m *Document) Name() string {
	return m.Called().String(0)
}

// Text is a mock implementation of the Text method.
func (m *Document) Text() string {
	return m.Called().String(0)
}

// CaretOffset is a mock implementation of the CaretOffset method.
func (m *Document) CaretOffset() int {
	return m.Called().Int(0)
}

// UpdateCode is a mock implementation of the UpdateCode method.
func (m *Document) UpdateCode(text string) {
	m.Called(text)
}

// Save is a mock implementation of the Save method.
func (m *Document) Save() error {
	return m.Called().Error(0)
}

// Scheduler is a mock implementation of controller.Scheduler.
type Scheduler struct {
	mock.Mock
}

// Execute is a mock implementation of the Execute method.
func (m *Scheduler) Execute(ctx context.Context, label string, task func(context.Context) error, onComplete func(tasks.Status)) {
	m.Called(ctx, label, task, onComplete)
}

// Host is a mock implementation of controller.Host.
type Host struct {
	mock.Mock
}

// ReloadExtensions is a mock implementation of the ReloadExtensions method.
func (m *Host) ReloadExtensions(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// ReloadInactiveTabs is a mock implementation of the ReloadInactiveTabs method.
func (m *Host) ReloadInactiveTabs() {
	m.Called()
}

// RefreshTree is a mock implementation of the RefreshTree method.
func (m *Host) RefreshTree() {
	m.Called()
}

// StatusLabel is a mock implementation of controller.StatusLabel.
type StatusLabel struct {
	mock.Mock
}

// SetText is a mock implementation of the SetText method.
func (m *StatusLabel) SetText(text string) {
	m.Called(text)
}
