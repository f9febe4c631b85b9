package chain

import "errors"

// Set of errors returned by the chain.
var (
	ErrBlockNotFound = errors.New("block not found")
	ErrAlreadyMined  = errors.New("block already mined")
	ErrBlockMismatch = errors.New("mined block does not match the chain")
	ErrNotSolved     = errors.New("block hash does not clear the difficulty")
)
