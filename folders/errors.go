package folders

import "errors"

var (
	// ErrFolderNotFound indicates the path names no folder.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrFolderExists indicates a sibling already has the requested name.
	ErrFolderExists = errors.New("folder already exists")

	// ErrInvalidName indicates a blank folder name or one containing the path separator.
	ErrInvalidName = errors.New("invalid folder name")

	// ErrRootFolder indicates an operation that cannot apply to the root.
	ErrRootFolder = errors.New("operation not allowed on the root folder")

	// ErrEmptyDocumentID indicates a blank document id.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrDocumentNotInFolder indicates the document is not filed in the folder.
	ErrDocumentNotInFolder = errors.New("document not in folder")

	// ErrInconsistent indicates a folder's document count disagrees with its contents.
	ErrInconsistent = errors.New("folder state is inconsistent")
)
