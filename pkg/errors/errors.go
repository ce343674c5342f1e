// Package errors defines the typed error taxonomy raised by the orchestration
// engine. Every error carries enough context (node, event, reference, field)
// to be logged usefully at the call site without string-matching messages.
package errors

import "fmt"

// MissingRequiredInputError is raised by the intrinsic evaluator when a
// get_input reference names a required input with no bound value and no
// default.
type MissingRequiredInputError struct {
	InputName string
}

func NewMissingRequiredInputError(name string) error {
	return &MissingRequiredInputError{InputName: name}
}

func (e *MissingRequiredInputError) Error() string {
	return fmt.Sprintf("input %q is required", e.InputName)
}

// UnknownPropertyError is raised when a get_property reference names a
// property the target node does not declare.
type UnknownPropertyError struct {
	NodeName     string
	PropertyName string
}

func NewUnknownPropertyError(node, property string) error {
	return &UnknownPropertyError{NodeName: node, PropertyName: property}
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("node %q has no property %q", e.NodeName, e.PropertyName)
}

// UnknownAttributeError is raised when a get_attribute reference names an
// attribute the target node's type does not declare.
type UnknownAttributeError struct {
	NodeName      string
	AttributeName string
}

func NewUnknownAttributeError(node, attribute string) error {
	return &UnknownAttributeError{NodeName: node, AttributeName: attribute}
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("node %q has no attribute %q", e.NodeName, e.AttributeName)
}

// NodeNotProvisionedError is raised when an attribute is resolved against a
// node that has not completed create, in a context where a degraded-null
// result is not acceptable (outputs, process_output).
type NodeNotProvisionedError struct {
	NodeName string
}

func NewNodeNotProvisionedError(node string) error {
	return &NodeNotProvisionedError{NodeName: node}
}

func (e *NodeNotProvisionedError) Error() string {
	return fmt.Sprintf("node %q is not provisioned", e.NodeName)
}

// InvalidReferenceError is raised by the plugin resolver when a reference
// string is not of the form "module:symbol" (exactly one colon).
type InvalidReferenceError struct {
	Reference string
}

func NewInvalidReferenceError(ref string) error {
	return &InvalidReferenceError{Reference: ref}
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid event implementation reference %q", e.Reference)
}

// PluginNotFoundError is raised when the module portion of a reference is
// not registered with the plugin resolver.
type PluginNotFoundError struct {
	Module string
}

func NewPluginNotFoundError(module string) error {
	return &PluginNotFoundError{Module: module}
}

func (e *PluginNotFoundError) Error() string {
	return fmt.Sprintf("no module named %q", e.Module)
}

// OperationNotFoundError is raised when the module is known but the symbol
// portion of a reference is not registered under it.
type OperationNotFoundError struct {
	Module string
	Symbol string
}

func NewOperationNotFoundError(module, symbol string) error {
	return &OperationNotFoundError{Module: module, Symbol: symbol}
}

func (e *OperationNotFoundError) Error() string {
	return fmt.Sprintf("module %q has no operation %q", e.Module, e.Symbol)
}

// MissingCreateError is raised during node construction when a node type
// does not define a Standard "create" implementation.
type MissingCreateError struct {
	NodeTypeID string
}

func NewMissingCreateError(typeID string) error {
	return &MissingCreateError{NodeTypeID: typeID}
}

func (e *MissingCreateError) Error() string {
	return fmt.Sprintf("node type %q is missing a required Standard \"create\" implementation", e.NodeTypeID)
}

// BadStateError is raised when deploy/undeploy is invoked from a status that
// does not permit it.
type BadStateError struct {
	Operation string
	Expected  []string
	Actual    string
}

func NewBadStateError(operation, actual string, expected ...string) error {
	return &BadStateError{Operation: operation, Expected: expected, Actual: actual}
}

func (e *BadStateError) Error() string {
	return fmt.Sprintf("cannot run %s from status %q (expected one of %v)", e.Operation, e.Actual, e.Expected)
}

// CyclicGraphError is raised by the planner when a node's requirements form
// a cycle.
type CyclicGraphError struct {
	Cycle []string
}

func NewCyclicGraphError(cycle []string) error {
	return &CyclicGraphError{Cycle: cycle}
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("cyclic requirement graph detected: %v", e.Cycle)
}

// ImmutableNameError is raised when code attempts to rename an already
// constructed deployment context.
type ImmutableNameError struct {
	Name string
}

func NewImmutableNameError(name string) error {
	return &ImmutableNameError{Name: name}
}

func (e *ImmutableNameError) Error() string {
	return fmt.Sprintf("deployment context name is immutable, current name is %q", e.Name)
}

// ImmutablePropertyError is raised when plugin code attempts to mutate a
// node's materialized properties instead of its runtime properties.
type ImmutablePropertyError struct {
	NodeName     string
	PropertyName string
}

func NewImmutablePropertyError(node, property string) error {
	return &ImmutablePropertyError{NodeName: node, PropertyName: property}
}

func (e *ImmutablePropertyError) Error() string {
	return fmt.Sprintf("node %q property %q is immutable", e.NodeName, e.PropertyName)
}

// UnsupportedIntrinsicFunctionError is raised when a field that only
// supports get_input (e.g. an artifact definition field) carries a
// different intrinsic reference.
type UnsupportedIntrinsicFunctionError struct {
	NodeName string
	Field    string
	Function string
}

func NewUnsupportedIntrinsicFunctionError(node, field, function string) error {
	return &UnsupportedIntrinsicFunctionError{NodeName: node, Field: field, Function: function}
}

func (e *UnsupportedIntrinsicFunctionError) Error() string {
	return fmt.Sprintf("node %q field %q uses unsupported intrinsic function %q", e.NodeName, e.Field, e.Function)
}

// OperationError wraps a failure raised by plugin-provided code, tagging it
// with the node and lifecycle/relationship event that were executing.
type OperationError struct {
	NodeName string
	Event    string
	Err      error
}

func NewOperationError(node, event string, err error) error {
	return &OperationError{NodeName: node, Event: event, Err: err}
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("node %q event %q failed: %v", e.NodeName, e.Event, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// ValidationError captures topology template validation issues, mirroring
// the shape plugins and callers expect from configuration-layer failures.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ParseError represents a template document parsing failure.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func NewParseError(path string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
