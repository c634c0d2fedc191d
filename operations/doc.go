/*
Package operations composes fallible steps into a single operation with fail-fast
short-circuiting, call-scoped dependency substitution, a params transform and result hooks.

# Core Components

Operation:
  - Defines an operation with an ID, a semver version and a description
  - Owns a Registry of step bindings, the params transform and the hooks
  - Its body receives a Scope and returns (value, error), normalized into a result.Result

Registry:
  - Declared once with WithStep, WithParamsTransform, WithSuccessHook and WithFailureHook
  - Only read while the operation is being called

Overrides:
  - Built per call from the function passed with WithOverrides
  - Substitutes step implementations or the params transform for that call only

Step unwrapping:
  - Unwrap, Value, Try and Step consume collaborator outcomes inside a body
  - The first failure halts the call; later steps do not run

Reporter:
  - Records a Report for every call, including the steps entered and child operations
  - MemoryReporter and FileReporter implementations

# Basic Usage

	transfer := operations.MustNewOperation("transfer", semver.MustParse("1.0.0"), "moves funds",
		func(s *operations.Scope, id int, _ operations.EmptyInput) (Receipt, error) {
			account, err := operations.Step[Account](s, "lookup", id)
			if err != nil {
				return Receipt{}, err
			}

			return operations.Step[Receipt](s, "debit", account)
		},
		operations.WithStep("lookup", lookupService),
		operations.WithStep("debit", debitService, operations.WithError(ErrDebitDeclined)),
	)

	bundle := operations.NewBundle(ctx, lggr, operations.NewMemoryReporter())
	res, err := transfer.Call(bundle, 1, operations.WithOverrides(func(o *operations.Overrides) {
		o.Step("lookup", mockLookup)
	}))
*/
package operations
