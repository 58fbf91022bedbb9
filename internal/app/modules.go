package app

import (
	"github.com/vk/pipewright/internal/builders"
	"github.com/vk/pipewright/internal/builders/dataload"
	"github.com/vk/pipewright/internal/builders/evaluate"
	"github.com/vk/pipewright/internal/builders/preprocess"
	"github.com/vk/pipewright/internal/builders/register"
	"github.com/vk/pipewright/internal/builders/train"
)

// coreModules is the definitive list of all step-builder modules compiled
// into the pipewright binary.
var coreModules = []builders.Module{
	dataload.Module{},
	preprocess.Module{},
	train.Module{},
	evaluate.Module{},
	register.Module{},
}
