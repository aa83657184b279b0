package backend

import (
	"context"

	"gioui.org/app"
	"git.sr.ht/~gioverse/skel/stream"
)

// WindowState is the backend state shared by everything drawn in a window.
type WindowState struct {
	Bundle
	Controller *stream.Controller
}

func NewWindowState(ctx context.Context, bundle Bundle, win *app.Window) WindowState {
	return WindowState{
		Bundle:     bundle,
		Controller: stream.NewController(ctx, win.Invalidate),
	}
}

// Bundle groups the application's backend services.
type Bundle struct {
	Data       *Dataset
	Datasource *Datasource
}

// NewBundle creates the backend services. invalidate is called whenever new
// data arrives.
func NewBundle(ctx context.Context, invalidate func()) (Bundle, error) {
	data := new(Dataset)
	ds, err := NewDatasource(ctx, data, invalidate)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{
		Data:       data,
		Datasource: ds,
	}, nil
}
