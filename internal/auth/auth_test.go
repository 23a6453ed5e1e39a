package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/prospect/internal/auth"
	"github.com/okian/prospect/internal/domain/model"
)

func TestAuthenticator(t *testing.T) {
	Convey("Given an authenticator", t, func() {
		a := auth.NewAuthenticator("secret")
		coach := model.Principal{UserID: "u-1", Role: model.RoleCoach}

		Convey("When a token is issued and parsed", func() {
			tok, err := a.Issue(coach, time.Hour)
			So(err, ShouldBeNil)
			p, err := a.Parse(tok)

			Convey("Then the principal round-trips", func() {
				So(err, ShouldBeNil)
				So(p, ShouldResemble, coach)
			})

			Convey("Then a bearer header parses the same", func() {
				got, err := a.FromHeader("Bearer " + tok)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, coach)
			})
		})

		Convey("When the header is empty", func() {
			p, err := a.FromHeader("")

			Convey("Then the caller is anonymous", func() {
				So(err, ShouldBeNil)
				So(p.Anonymous(), ShouldBeTrue)
			})
		})

		Convey("When the header is not a bearer token", func() {
			_, err := a.FromHeader("Basic dXNlcjpwYXNz")
			So(auth.IsInvalidToken(err), ShouldBeTrue)
		})

		Convey("When the token is signed with another key", func() {
			tok, _ := auth.NewAuthenticator("other").Issue(coach, time.Hour)
			_, err := a.Parse(tok)
			So(auth.IsInvalidToken(err), ShouldBeTrue)
		})

		Convey("When the token has expired", func() {
			tok, _ := a.Issue(coach, -time.Minute)
			_, err := a.Parse(tok)
			So(auth.IsInvalidToken(err), ShouldBeTrue)
		})

		Convey("When the token uses a different algorithm", func() {
			claims := &auth.Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{
				Subject: "u-1", Issuer: "prospect", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}}
			tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
			So(err, ShouldBeNil)
			_, err = a.Parse(tok)
			So(auth.IsInvalidToken(err), ShouldBeTrue)
		})

		Convey("When the role is unknown", func() {
			claims := &auth.Claims{Role: "root", RegisteredClaims: jwt.RegisteredClaims{
				Subject: "u-1", Issuer: "prospect", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}}
			tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
			_, err := a.Parse(tok)
			So(auth.IsInvalidToken(err), ShouldBeTrue)
		})

		Convey("When issuing for an anonymous principal", func() {
			_, err := a.Issue(model.Principal{}, time.Hour)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestPrincipalContext(t *testing.T) {
	Convey("Given a context", t, func() {
		ctx := context.Background()
		So(auth.PrincipalFrom(ctx).Anonymous(), ShouldBeTrue)

		p := model.Principal{UserID: "u", Role: model.RoleAdmin}
		So(auth.PrincipalFrom(auth.WithPrincipal(ctx, p)), ShouldResemble, p)
	})
}

func TestPolicy(t *testing.T) {
	Convey("Given a private profile", t, func() {
		a := model.Athlete{UserID: "owner", IsPublic: false}
		owner := model.Principal{UserID: "owner", Role: model.RoleAthlete}
		admin := model.Principal{UserID: "root", Role: model.RoleAdmin}
		brand := model.Principal{UserID: "brand", Role: model.RoleBrand}
		anon := model.Principal{}

		Convey("Then only owner and admin may view or modify it", func() {
			So(auth.CanView(owner, a), ShouldBeTrue)
			So(auth.CanView(admin, a), ShouldBeTrue)
			So(auth.CanView(brand, a), ShouldBeFalse)
			So(auth.CanView(anon, a), ShouldBeFalse)
			So(auth.CanModify(brand, a), ShouldBeFalse)
		})

		Convey("Then a public profile is visible to anyone but still owner-modifiable only", func() {
			a.IsPublic = true
			So(auth.CanView(anon, a), ShouldBeTrue)
			So(auth.CanModify(anon, a), ShouldBeFalse)
			So(auth.CanModify(owner, a), ShouldBeTrue)
		})

		Convey("Then only admins may set scores", func() {
			So(auth.CanSetScores(admin), ShouldBeTrue)
			So(auth.CanSetScores(owner), ShouldBeFalse)
		})
	})
}
