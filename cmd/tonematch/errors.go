package main

import "errors"

var (
	errAnalyzeArgs = errors.New("expected exactly one argument: audio file path")
	errMatchArgs   = errors.New("expected exactly two arguments: reference and input (audio files or saved profiles)")
	errExportArgs  = errors.New("expected exactly one argument: path to a saved match result")
	errNoProfile   = errors.New("file holds no profile")
)
