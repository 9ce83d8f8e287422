package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/small-engineer/go-web-serv/recipe/internal/domain"
)

func hrefs(ls []Link) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.Href)
	}
	return out
}

func TestRender_Anonymous(t *testing.T) {
	b := Render(DefaultBar(), nil)
	assert.Equal(t, []string{PathHome}, hrefs(b.Links))
	assert.Equal(t, []string{PathLogin, PathRegister}, hrefs(b.Actions))
	assert.False(t, b.Authenticated())
}

func TestRender_Authenticated(t *testing.T) {
	b := Render(DefaultBar(), &domain.User{ID: 1, Name: "Jo"})
	assert.Equal(t, []string{PathDashboard, PathLogout}, hrefs(b.Actions))
	assert.True(t, b.Actions[1].Post)
	assert.True(t, b.Authenticated())
}

func TestRender_Idempotent(t *testing.T) {
	u := &domain.User{ID: 1}
	once := Render(DefaultBar(), u)
	twice := Render(once, u)
	assert.Equal(t, once, twice)

	loggedOut := Render(twice, nil)
	assert.Equal(t, Render(DefaultBar(), nil), loggedOut)
}

func TestRender_DropsInjectedAuthLinks(t *testing.T) {
	b := Bar{
		Links: []Link{
			{Label: "Home", Href: PathHome},
			{Label: "Login", Href: PathLogin, Auth: true},
			{Label: "Recipes", Href: "/recipes"},
		},
	}
	out := Render(b, nil)
	assert.Equal(t, []string{PathHome, "/recipes"}, hrefs(out.Links))
	assert.Len(t, b.Links, 3)
}
