// Package randomname generates human-friendly nicknames such as
// "clever_otter_042" for users who register without choosing one.
//
//	gen := randomname.New()
//	nick, err := gen.Generate(ctx, func(ctx context.Context, name string) (bool, error) {
//		taken, err := store.NicknameExists(ctx, name)
//		return !taken, err
//	})
package randomname
