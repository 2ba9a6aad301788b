package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/cardkeeper/internal/barcode"
	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/client/session"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
	"github.com/dmitrijs2005/cardkeeper/internal/filex"
)

const editHelp = `Commands:
  show                          print the card
  store <name>                  set the store name
  note <text>                   set the note
  cardid <id>                   set the card ID
  barcodeid <id>|same           set the barcode value, or follow the card ID
  type <symbology>|none         set the barcode type
  balance <amount>              set the balance
  currency <symbol>|points      set the balance currency
  validfrom|expiry <date>|none  set a date (YYYY-MM-DD)
  color <#AARRGGBB>|none        set the header color
  star|unstar, archive|unarchive
  image front|back|icon <file>|none
  group <name>                  toggle a group
  tab card|options|photos       switch tab
  render <file.png>             write the barcode preview
  yes|no                        answer the barcode ID question
  save                          save the card
  exit                          leave (asks when there are unsaved changes)
  discard                       leave without saving`

// Edit loads a card into a new session and runs the edit prompt until the
// user leaves or input ends.
func (a *App) Edit(ctx context.Context, req models.LoadRequest) error {
	s := a.newSession()
	defer s.Close()

	loaded, err := waitLoaded(ctx, s, req)
	if err != nil {
		return err
	}

	e := &editor{
		s:        s,
		app:      a,
		out:      a.out,
		selected: models.CloneGroups(loaded.Groups),
		readFile: os.ReadFile,
	}

	w, h := previewViewport()
	if err := s.GenerateBarcode(loaded.Card.EffectiveBarcodeID(), loaded.Card.BarcodeType, w, h,
		barcode.Options{AllowFallback: true, RoundedCorners: true}); err != nil {
		return err
	}

	describeCard(a.out, loaded.Card, loaded.Groups, a.currencies)
	fmt.Fprintln(a.out, "Type 'help' for commands.")
	return e.run(ctx, a.in)
}

func waitLoaded(ctx context.Context, s *session.Session, req models.LoadRequest) (session.CardLoaded, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	states := s.CardStates(ctx)
	if err := s.LoadCard(req); err != nil {
		return session.CardLoaded{}, err
	}

	for state := range states {
		switch st := state.(type) {
		case session.CardLoaded:
			return st, nil
		case session.CardLoadFailed:
			return session.CardLoaded{}, st.Err
		}
	}
	if err := ctx.Err(); err != nil {
		return session.CardLoaded{}, err
	}
	return session.CardLoaded{}, common.ErrSessionClosed
}

type editor struct {
	s        *session.Session
	app      *App
	out      io.Writer
	selected []models.Group
	readFile func(string) ([]byte, error)
}

func (e *editor) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := readLines(ctx, in)
	events := e.s.Events()

	e.prompt()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				return e.waitSave(ctx)
			}
			if e.exec(line) {
				return nil
			}
			e.prompt()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if e.handleEvent(ev) {
				return nil
			}
		}
	}
}

// waitSave blocks while a save is in flight so that input ending right
// after "save" does not drop it.
func (e *editor) waitSave(ctx context.Context) error {
	for st := range e.s.SaveStates(ctx) {
		switch st := st.(type) {
		case session.Saving:
			continue
		case session.SaveFailed:
			return st.Err
		}
		return nil
	}
	return ctx.Err()
}

func (e *editor) prompt() {
	fmt.Fprintf(e.out, "card [%s]> ", e.s.Tab())
}

// exec runs one command line and reports whether the editor should stop.
func (e *editor) exec(line string) bool {
	cmd, arg := splitCommand(line)
	if cmd == "" {
		return false
	}

	var err error
	switch cmd {
	case "help":
		fmt.Fprintln(e.out, editHelp)
	case "show":
		e.show()
	case "store":
		err = e.s.SetStoreName(arg)
	case "note":
		err = e.s.SetNote(arg)
	case "cardid":
		err = e.s.SetCardID(arg)
	case "barcodeid":
		if arg == "same" || arg == "" {
			err = e.s.SetBarcodeID(nil)
		} else {
			err = e.s.SetBarcodeID(&arg)
		}
	case "type":
		err = e.setType(arg)
	case "balance":
		err = e.s.SetBalanceText(arg)
	case "currency":
		if arg == "points" {
			arg = ""
		}
		err = e.s.SetBalanceCurrency(arg)
	case "validfrom", "expiry":
		err = e.setDate(cmd, arg)
	case "color":
		err = e.setColor(arg)
	case "star", "unstar":
		err = e.s.SetStarred(cmd == "star")
	case "archive", "unarchive":
		err = e.s.SetArchived(cmd == "archive")
	case "image":
		err = e.setImage(arg)
	case "group":
		e.toggleGroup(arg)
	case "tab":
		err = e.setTab(arg)
	case "render":
		err = e.render(arg)
	case "yes", "no":
		err = e.s.ResolveBarcodeSync(cmd == "yes")
	case "save":
		err = e.s.SaveCard(e.selected)
	case "exit", "quit":
		e.s.RequestExit()
	case "discard":
		fmt.Fprintln(e.out, "Changes discarded.")
		return true
	default:
		fmt.Fprintln(e.out, "Unknown command:", cmd)
	}

	if err != nil {
		e.printError(err)
	}
	return false
}

func (e *editor) printError(err error) {
	var verr *session.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			fmt.Fprintf(e.out, "  %s: %v\n", f.Field, f.Err)
		}
		return
	}
	fmt.Fprintln(e.out, "Error:", err)
}

// handleEvent prints ev and reports whether the editor should stop.
func (e *editor) handleEvent(ev session.Event) bool {
	switch ev := ev.(type) {
	case session.EventAskSyncBarcodeID:
		fmt.Fprintf(e.out, "\nThe card ID is now %q. Use it as barcode value too, instead of %q? (yes/no)\n",
			ev.CardID, ev.BarcodeID)
	case session.EventSaved:
		fmt.Fprintf(e.out, "\nSaved card %d.\n", ev.ID)
	case session.EventToast:
		fmt.Fprintf(e.out, "\n%s\n", ev.Message)
	case session.EventConfirmDiscard:
		fmt.Fprintln(e.out, "\nThere are unsaved changes. Type 'save' or 'discard'.")
	case session.EventExit:
		return true
	}
	e.prompt()
	return false
}

func (e *editor) show() {
	card, err := e.s.Card()
	if err != nil {
		e.printError(err)
		return
	}
	describeCard(e.out, card, e.selected, e.app.currencies)
	fmt.Fprintf(e.out, "Preview:    %s\n", describeBarcode(e.s.BarcodeState()))
	if pending, ok := e.s.PendingBarcodeSync(); ok {
		fmt.Fprintf(e.out, "Pending:    barcode value %q awaits yes/no\n", pending)
	}
}

func (e *editor) setType(arg string) error {
	if arg == "" || arg == "none" {
		return e.s.SetBarcodeType(nil)
	}
	t, err := barcode.ParseSymbology(arg)
	if err != nil {
		return fmt.Errorf("%w (one of %s)", err, symbologyNames())
	}
	return e.s.SetBarcodeType(&t)
}

func (e *editor) setDate(field, arg string) error {
	var t *time.Time
	if arg != "" && arg != "none" {
		parsed, err := time.ParseInLocation(dateLayout, arg, time.Local)
		if err != nil {
			return fmt.Errorf("%w: date %q", common.ErrParse, arg)
		}
		t = &parsed
	}
	if field == "validfrom" {
		return e.s.SetValidFrom(t)
	}
	return e.s.SetExpiry(t)
}

func (e *editor) setColor(arg string) error {
	if arg == "" || arg == "none" {
		return e.s.SetHeaderColor(nil)
	}
	hex := strings.TrimPrefix(arg, "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || (len(hex) != 6 && len(hex) != 8) {
		return fmt.Errorf("%w: color %q", common.ErrParse, arg)
	}
	argb := uint32(v)
	if len(hex) == 6 {
		argb |= 0xFF000000
	}
	return e.s.SetHeaderColor(&argb)
}

func (e *editor) setImage(arg string) error {
	locName, path, _ := strings.Cut(arg, " ")
	loc, err := models.ParseImageLocation(locName)
	if err != nil {
		return err
	}
	path = strings.TrimSpace(path)
	if path == "" || path == "none" {
		return e.s.SetImage(loc, nil)
	}
	data, err := e.readFile(path)
	if err != nil {
		return err
	}
	return e.s.SetImage(loc, data)
}

func (e *editor) toggleGroup(name string) {
	if name == "" {
		return
	}
	if i := slices.IndexFunc(e.selected, func(g models.Group) bool { return g.Name == name }); i >= 0 {
		e.selected = slices.Delete(e.selected, i, i+1)
		fmt.Fprintf(e.out, "Removed from group %s.\n", name)
		return
	}
	e.selected = append(e.selected, models.Group{Name: name})
	fmt.Fprintf(e.out, "Added to group %s.\n", name)
}

func (e *editor) setTab(arg string) error {
	for _, t := range []session.Tab{session.TabCard, session.TabOptions, session.TabPhotos} {
		if t.String() == arg {
			e.s.SetTab(t)
			return nil
		}
	}
	return fmt.Errorf("%w: tab %q", common.ErrParse, arg)
}

func (e *editor) render(path string) error {
	if path == "" {
		return fmt.Errorf("usage: render <file.png>")
	}
	st, ok := e.s.BarcodeState().(session.BarcodeGenerated)
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrRenderFailed, describeBarcode(e.s.BarcodeState()))
	}

	var buf bytes.Buffer
	if err := barcode.EncodePNG(&buf, st.Result); err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Wrote %s.\n", path)
	return nil
}
