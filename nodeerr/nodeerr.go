// Package nodeerr is the node-wide typed error taxonomy: a small closed
// set of string codes a caller can switch on via errors.As, instead of
// string-matching error messages.
package nodeerr

import (
	"errors"
	"fmt"
)

// Code is one of the closed set of error kinds the node distinguishes.
type Code string

const (
	// Decoding.
	InvalidPacket           Code = "InvalidPacket"
	InvalidPacketSize       Code = "InvalidPacketSize"
	InvalidPacketNotFullRead Code = "InvalidPacketNotFullRead"
	InvalidSize             Code = "InvalidSize"
	InvalidValue            Code = "InvalidValue"

	// Protocol.
	InvalidDirection             Code = "InvalidDirection"
	InvalidProtocolRules         Code = "InvalidProtocolRules"
	InvalidInventoryPagination   Code = "InvalidInventoryPagination"
	UnknownPeerReceived          Code = "UnknownPeerReceived"
	InvalidHandshake             Code = "InvalidHandshake"
	ExpectedHandshake            Code = "ExpectedHandshake"
	InvalidNetwork               Code = "InvalidNetwork"
	InvalidNetworkID             Code = "InvalidNetworkID"
	PeerIDAlreadyUsed            Code = "PeerIdAlreadyUsed"
	PeerAlreadyConnected         Code = "PeerAlreadyConnected"
	PeerInvalidPingCountdown     Code = "PeerInvalidPingCoutdown"
	PeerInvalidPeerListCountdown Code = "PeerInvalidPeerListCountdown"
	RequestSyncChainTooFast      Code = "RequestSyncChainTooFast"

	// Request/response matching.
	UnrequestedChainResponse          Code = "UnrequestedChainResponse"
	InvalidChainResponseSize          Code = "InvaliChainResponseSize"
	UnrequestedBootstrapChainResponse Code = "UnrequestedBootstrapChainResponse"
	ObjectNotFound                    Code = "ObjectNotFound"
	ObjectNotRequested                Code = "ObjectNotRequested"
	ObjectAlreadyRequested            Code = "ObjectAlreadyRequested"
	ObjectHashNotPresentInQueue       Code = "ObjectHashNotPresentInQueue"
	InvalidObjectHash                 Code = "InvalidObjectHash"
	InvalidObjectResponse             Code = "InvalidObjectResponse"
	InvalidObjectResponseType         Code = "InvalidObjectResponseType"
	InvalidBootstrapStep              Code = "InvalidBootstrapStep"

	// Propagation de-dup.
	AlreadyTrackedBlock             Code = "AlreadyTrackedBlock"
	AlreadyTrackedTx                Code = "AlreadyTrackedTx"
	BlockPropagatedUnderStableHeight Code = "BlockPropagatedUnderStableHeight"

	// Chain.
	ExpectedTips             Code = "ExpectedTips"
	InvalidCommonPoint       Code = "InvalidCommonPoint"
	InvalidRequestedTopoheight Code = "InvalidRequestedTopoheight"

	// Transport.
	Disconnected Code = "Disconnected"
	NoResponse   Code = "NoResponse"
	AsyncTimeOut Code = "AsyncTimeOut"
	Canceled     Code = "Canceled"
)

// Error is the concrete error value carried through the node for any
// code in this package. Msg is free-form context; Code is what callers
// should switch on.
type Error struct {
	Code Code
	Msg  string
	Err  error // optional wrapped cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds an *Error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Msg: msg}
}

// Wrap builds an *Error with the given code, message, and cause.
func Wrap(code Code, msg string, cause error) error {
	return &Error{Code: code, Msg: msg, Err: cause}
}

// Is reports whether err is a *Error carrying the given code.
func Is(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}
