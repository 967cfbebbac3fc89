package dataset

import (
	"os"

	"github.com/openmined/dsmanager/internal/utils"
)

// filesystem mutations, swapped out by tests to inject failures
var (
	renameNoReplace = utils.RenameNoReplace
	moveFile        = utils.MoveFile
	removeFile      = os.Remove
)
