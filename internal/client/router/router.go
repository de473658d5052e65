// Package router holds the client's route table and the guard that decides,
// before every navigation, whether the current auth state may enter a route.
package router

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
)

// Meta marks who may visit a route.
type Meta struct {
	// RequiresAuth routes are for signed-in users only.
	RequiresAuth bool
	// Guest routes are for signed-out users only.
	Guest bool
}

type Route struct {
	Name string
	Path string
	Meta Meta
}

// Route names.
const (
	Home          = "Home"
	Login         = "Login"
	Register      = "Register"
	Ingredients   = "Ingredients"
	Account       = "Account"
	AddRecipe     = "AddRecipe"
	RecipeDetails = "RecipeDetails"
	EditRecipe    = "EditRecipe"
	NotFound      = "NotFound"
)

// DefaultTable is the client's route table. Anything it does not list
// resolves to NotFound.
var DefaultTable = []Route{
	{Name: Home, Path: "/"},
	{Name: Login, Path: "/login", Meta: Meta{Guest: true}},
	{Name: Register, Path: "/register", Meta: Meta{Guest: true}},
	{Name: Ingredients, Path: "/ingredients"},
	{Name: Account, Path: "/account", Meta: Meta{RequiresAuth: true}},
	{Name: AddRecipe, Path: "/add-recipe", Meta: Meta{RequiresAuth: true}},
	{Name: RecipeDetails, Path: "/recipe/{recipeId}"},
	{Name: EditRecipe, Path: "/edit-recipe/{id}", Meta: Meta{RequiresAuth: true}},
}

// Decision is the outcome of a navigation. A non-empty Redirect means the
// navigation was refused and should go there instead.
type Decision struct {
	Route    Route
	Params   map[string]string
	Redirect string
}

// Guard applies a route's Meta to the auth state.
func Guard(meta Meta, authenticated bool) Decision {
	switch {
	case meta.RequiresAuth && !authenticated:
		return Decision{Redirect: "/login"}
	case meta.Guest && authenticated:
		return Decision{Redirect: "/"}
	default:
		return Decision{}
	}
}

type Router struct {
	m      *mux.Router
	routes map[string]Route
}

func New(table []Route) *Router {
	r := &Router{m: mux.NewRouter(), routes: make(map[string]Route, len(table)+1)}
	for _, rt := range table {
		r.m.Path(rt.Path).Name(rt.Name)
		r.routes[rt.Name] = rt
	}
	r.m.PathPrefix("/").Name(NotFound)
	r.routes[NotFound] = Route{Name: NotFound, Path: "/{rest:.*}"}
	return r
}

// Match finds the route for path without guarding it. Matching ignores
// case and a trailing slash; params keep the case they were given in.
func (r *Router) Match(path string) (Route, map[string]string) {
	path = trimSlash(path)
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: strings.ToLower(path)}}

	var rm mux.RouteMatch
	if !r.m.Match(req, &rm) || rm.Route == nil {
		return r.routes[NotFound], nil
	}

	rt := r.routes[rm.Route.GetName()]
	if len(rm.Vars) == 0 || rt.Name == NotFound {
		return rt, rm.Vars
	}
	return rt, params(rt.Path, path)
}

func trimSlash(path string) string {
	if t := strings.TrimRight(path, "/"); t != "" {
		return t
	}
	return "/"
}

// params reads {name} segments of template from path.
func params(template, path string) map[string]string {
	tpl := strings.Split(template, "/")
	seg := strings.Split(path, "/")

	out := make(map[string]string)
	for i, t := range tpl {
		if i < len(seg) && strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") {
			out[strings.Trim(t, "{}")] = seg[i]
		}
	}
	return out
}

// Resolve matches path and guards the result.
func (r *Router) Resolve(path string, authenticated bool) Decision {
	rt, vars := r.Match(path)
	d := Guard(rt.Meta, authenticated)
	d.Route = rt
	d.Params = vars
	return d
}
