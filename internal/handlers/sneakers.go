package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mcansh/snkrs-sub000/internal/catalog"
	"github.com/mcansh/snkrs-sub000/internal/middleware"
	"github.com/mcansh/snkrs-sub000/internal/weberr"
)

type sneakerForm struct {
	values map[string]string
	errors map[string]string
	params catalog.SneakerParams
}

// parseSneakerForm validates the form and accumulates field-indexed
// errors so the form can re-render inline with the submitted values.
func parseSneakerForm(c *gin.Context) sneakerForm {
	f := sneakerForm{
		values: map[string]string{
			"brand":        c.PostForm("brand"),
			"model":        c.PostForm("model"),
			"colorway":     c.PostForm("colorway"),
			"price":        c.PostForm("price"),
			"retailPrice":  c.PostForm("retailPrice"),
			"purchaseDate": c.PostForm("purchaseDate"),
		},
		errors: map[string]string{},
	}
	if c.PostForm("sold") != "" {
		f.values["sold"] = "on"
	}

	f.params.BrandName = f.values["brand"]
	if f.params.BrandName == "" {
		f.errors["brand"] = "Brand is required"
	}
	f.params.Model = f.values["model"]
	if f.params.Model == "" {
		f.errors["model"] = "Model is required"
	}
	f.params.Colorway = f.values["colorway"]

	f.params.Price = parseCents(f.values["price"], "price", f.errors)
	f.params.RetailPrice = parseCents(f.values["retailPrice"], "retailPrice", f.errors)

	if f.values["purchaseDate"] == "" {
		f.errors["purchaseDate"] = "Purchase date is required"
	} else {
		t, err := time.Parse("2006-01-02", f.values["purchaseDate"])
		if err != nil {
			f.errors["purchaseDate"] = "Purchase date must be YYYY-MM-DD"
		} else {
			f.params.PurchaseDate = t
		}
	}

	f.params.Sold = f.values["sold"] == "on"
	if f.params.Sold {
		now := time.Now()
		f.params.SoldDate = &now
	}

	return f
}

// parseCents accepts "120" or "120.50" and stores cents.
func parseCents(raw, field string, errs map[string]string) int {
	if raw == "" {
		return 0
	}
	raw = strings.TrimPrefix(raw, "$")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		errs[field] = "Must be a dollar amount"
		return 0
	}
	return int(v*100 + 0.5)
}

func (h *Handlers) renderSneakerForm(c *gin.Context, status int, title string, f sneakerForm) {
	c.HTML(status, "sneaker_form", gin.H{
		"Title":  title,
		"Values": f.values,
		"Errors": f.errors,
	})
}

func (h *Handlers) sneakerAddForm(c *gin.Context) {
	h.renderSneakerForm(c, http.StatusOK, "Add a sneaker", sneakerForm{
		values: map[string]string{},
		errors: map[string]string{},
	})
}

func (h *Handlers) sneakerAdd(c *gin.Context) {
	user := middleware.UserFrom(c)

	f := parseSneakerForm(c)
	if len(f.errors) > 0 {
		h.renderSneakerForm(c, http.StatusUnprocessableEntity, "Add a sneaker", f)
		return
	}
	f.params.UserID = user.ID

	if _, err := h.store.CreateSneaker(c.Request.Context(), f.params); err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/"+user.Username)
}

// ownedSneaker loads the sneaker and enforces ownership; admins may edit
// anything.
func (h *Handlers) ownedSneaker(c *gin.Context) (*catalog.Sneaker, bool) {
	user := middleware.UserFrom(c)

	sn, err := h.store.SneakerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if weberr.IsNotFound(err) {
			h.renderNotFound(c, "sneaker")
		} else {
			h.renderError(c, err)
		}
		return nil, false
	}

	if sn.UserID != user.ID && !user.Admin {
		e := weberr.Authorization()
		c.String(e.Status, e.Message)
		return nil, false
	}
	return sn, true
}

func (h *Handlers) sneakerEditForm(c *gin.Context) {
	sn, ok := h.ownedSneaker(c)
	if !ok {
		return
	}

	values := map[string]string{
		"brand":        sn.Brand.Name,
		"model":        sn.Model,
		"colorway":     sn.Colorway,
		"price":        fmt.Sprintf("%d.%02d", sn.Price/100, sn.Price%100),
		"retailPrice":  fmt.Sprintf("%d.%02d", sn.RetailPrice/100, sn.RetailPrice%100),
		"purchaseDate": sn.PurchaseDate.Format("2006-01-02"),
	}
	if sn.Sold {
		values["sold"] = "on"
	}

	h.renderSneakerForm(c, http.StatusOK, "Edit sneaker", sneakerForm{
		values: values,
		errors: map[string]string{},
	})
}

func (h *Handlers) sneakerEdit(c *gin.Context) {
	sn, ok := h.ownedSneaker(c)
	if !ok {
		return
	}

	f := parseSneakerForm(c)
	if len(f.errors) > 0 {
		h.renderSneakerForm(c, http.StatusUnprocessableEntity, "Edit sneaker", f)
		return
	}
	f.params.UserID = sn.UserID

	if _, err := h.store.UpdateSneaker(c.Request.Context(), sn.ID, f.params); err != nil {
		h.renderError(c, err)
		return
	}

	user := middleware.UserFrom(c)
	c.Redirect(http.StatusFound, "/"+user.Username)
}

func (h *Handlers) sneakerImage(c *gin.Context) {
	if h.uploader == nil {
		c.String(http.StatusNotImplemented, "media storage is not configured")
		return
	}

	sn, ok := h.ownedSneaker(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.String(http.StatusBadRequest, "image file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		h.renderError(c, err)
		return
	}
	defer src.Close()

	key := fmt.Sprintf("sneakers/%s/%d-%s", sn.ID, time.Now().UnixMilli(), file.Filename)
	url, err := h.uploader.Put(
		c.Request.Context(),
		key,
		src,
		file.Size,
		file.Header.Get("Content-Type"),
	)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if err := h.store.SetSneakerImage(c.Request.Context(), sn.ID, url); err != nil {
		h.renderError(c, err)
		return
	}

	user := middleware.UserFrom(c)
	c.Redirect(http.StatusFound, "/"+user.Username)
}
