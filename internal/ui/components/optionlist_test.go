package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestOptionListNavigation(t *testing.T) {
	o := NewOptionList([]string{"Winter", "Summer", "Spring"})

	o, _ = o.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	o, _ = o.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	o, _ = o.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if o.Selected != 2 {
		t.Fatalf("Selected = %d, want 2", o.Selected)
	}

	_, cmd := o.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on enter")
	}
	if msg, ok := cmd().(OptionChosenMsg); !ok || msg.Index != 2 {
		t.Errorf("got %#v, want OptionChosenMsg{Index: 2}", cmd())
	}
}

func TestOptionListNumberKeys(t *testing.T) {
	o := NewOptionList([]string{"Winter", "Summer"})

	o, cmd := o.Update(tea.KeyPressMsg{Code: '2', Text: "2"})
	if cmd == nil {
		t.Fatal("expected a command for key 2")
	}
	if msg := cmd().(OptionChosenMsg); msg.Index != 1 {
		t.Errorf("Index = %d, want 1", msg.Index)
	}
	if o.Selected != 1 {
		t.Errorf("Selected = %d, want 1", o.Selected)
	}

	if _, cmd := o.Update(tea.KeyPressMsg{Code: '3', Text: "3"}); cmd != nil {
		t.Error("key beyond the last option must be ignored")
	}
}

func TestOptionListDisabled(t *testing.T) {
	o := NewOptionList([]string{"Winter", "Summer"})
	o.Disabled = true

	if _, cmd := o.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("a disabled list must not emit choices")
	}
	if strings.Contains(o.View(), "▸") {
		t.Error("a disabled list shows no cursor")
	}
}

func TestOptionListView(t *testing.T) {
	o := NewOptionList([]string{"Winter", "Summer"})
	v := o.View()
	for _, want := range []string{"1)  Winter", "2)  Summer", "▸"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}
}
