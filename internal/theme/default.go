// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package theme resolves per-product themes and turns them into the CSS
// custom properties injected into landing pages.
package theme

import "landingpress/internal/models"

// Default returns a fresh copy of the built-in theme used for products
// without a stored theme row. Callers may mutate the result.
func Default() *models.Theme {
	return &models.Theme{
		PrimaryBgColor:   "#ffffff",
		SecondaryBgColor: "#f7f9f4",
		AccentBgColor:    "#e8f3e1",

		PrimaryTextColor:   "#1f2a1b",
		SecondaryTextColor: "#56614f",
		AccentTextColor:    "#2f7a32",
		LinkColor:          "#2f7a32",
		LinkHoverColor:     "#225a24",

		ButtonPrimaryBg:        "#f28c28",
		ButtonPrimaryText:      "#ffffff",
		ButtonPrimaryHoverBg:   "#d9741a",
		ButtonSecondaryBg:      "#ffffff",
		ButtonSecondaryText:    "#2f7a32",
		ButtonSecondaryHoverBg: "#e8f3e1",

		CardBgColor:     "#ffffff",
		CardBorderColor: "#e3e8de",
		CardShadowColor: "rgba(31, 42, 27, 0.08)",

		HeaderBgColor:   "#ffffff",
		HeaderTextColor: "#1f2a1b",
		FooterBgColor:   "#1f2a1b",
		FooterTextColor: "#e3e8de",

		FontFamily:     "'Inter', 'Helvetica Neue', Arial, sans-serif",
		H1FontSize:     "3rem",
		H1FontWeight:   "800",
		H2FontSize:     "2.25rem",
		H2FontWeight:   "700",
		H3FontSize:     "1.5rem",
		H3FontWeight:   "600",
		BodyFontSize:   "1rem",
		BodyLineHeight: "1.6",

		SectionPadding: "4rem 1.5rem",
		CardPadding:    "1.5rem",
		ButtonPadding:  "0.875rem 2rem",

		BorderRadiusSm: "4px",
		BorderRadiusMd: "8px",
		BorderRadiusLg: "16px",
		BorderRadiusXl: "24px",

		MaxWidth:         "1200px",
		ContainerPadding: "0 1.5rem",

		GradientStart: "#e8f3e1",
		GradientEnd:   "#ffffff",
		ShadowColor:   "rgba(0, 0, 0, 0.12)",
	}
}
